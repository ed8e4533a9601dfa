// Package storage holds the reflection helpers shared by the storage drivers.
package storage

import (
	"reflect"
	"sync"
)

// Columns lists the columns of an entity type, derived once from its "db" tags.
// Read columns include view-only fields; write columns exclude fields tagged `write:"-"`.
type Columns struct {
	Read  []string
	Write []string
}

// ExtractColumns extracts the column names of T, flattening embedded structs.
//
// Usage:
//
//	cols := ExtractColumns[*filial.Filial]()
//	// cols.Read:  ["id", "ativa", ..., "empresa_id", "matriz", "empresa_nome"]
//	// cols.Write: ["id", "ativa", ..., "empresa_id", "matriz"]
func ExtractColumns[T any]() Columns {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))

	var cols Columns
	meta.walk(func(f fieldInfo) {
		cols.Read = append(cols.Read, f.column)
		if f.writable {
			cols.Write = append(cols.Write, f.column)
		}
	})
	return cols
}

// fieldInfo contains pre-computed metadata about a struct field.
// Embedded structs are kept in declaration order so columns follow the struct layout.
type fieldInfo struct {
	index    int
	column   string
	writable bool
	embedded *typeMetadata
}

// typeMetadata contains cached reflection metadata for a type.
type typeMetadata struct {
	fields []fieldInfo
}

func (m *typeMetadata) walk(fn func(fieldInfo)) {
	for _, f := range m.fields {
		if f.embedded != nil {
			f.embedded.walk(fn)
			continue
		}
		fn(f)
	}
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

// metadataFor returns cached metadata or computes it on first use.
func metadataFor(t reflect.Type) *typeMetadata {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return &typeMetadata{}
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)

			if field.Anonymous {
				meta.fields = append(meta.fields, fieldInfo{index: i, embedded: metadataFor(field.Type)})
				continue
			}

			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}

			meta.fields = append(meta.fields, fieldInfo{
				index:    i,
				column:   tag,
				writable: field.Tag.Get("write") != "-",
			})
		}
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a column→value map using "db" tags,
// including view-only fields.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.fields))
	fill(rv, meta, res)
	return res
}

func fill(rv reflect.Value, meta *typeMetadata, res map[string]any) {
	for _, f := range meta.fields {
		fv := rv.Field(f.index)
		if f.embedded == nil {
			res[f.column] = fv.Interface()
			continue
		}
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		fill(fv, f.embedded, res)
	}
}

// Deref unwraps a non-nil pointer value; nil pointers become nil.
// Used to compare column values regardless of optionality.
func Deref(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}
