package memory

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retaguarda/internal/infrastructure/storage"
)

// equalValues compares column values the way the database would: pointers are
// dereferenced, nil matches only nil, and strings match any value with the same text.
func equalValues(a, b any) bool {
	a, b = storage.Deref(a), storage.Deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Equal(db)
		}
	}

	if reflect.TypeOf(a) == reflect.TypeOf(b) && reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders column values; nil sorts first.
func compareValues(a, b any) int {
	a, b = storage.Deref(a), storage.Deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch va := a.(type) {
	case int:
		if vb, ok := b.(int); ok {
			return va - vb
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			}
			return 1
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case decimal.Decimal:
		if vb, ok := b.(decimal.Decimal); ok {
			return va.Cmp(vb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
