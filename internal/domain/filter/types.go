// Package filter describes ad-hoc list filters sent by clients.
package filter

import (
	"fmt"
)

// ComparisonType is the comparison applied by an Item.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is one filter row.
type Item struct {
	Field    string         `json:"field"` // column name (snake_case)
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Eq builds an equality item.
func Eq(field string, value any) Item {
	return Item{Field: field, Operator: Equal, Value: value}
}

// Validate checks the operator is known and a value is present when required.
func (i Item) Validate() error {
	switch i.Operator {
	case IsNull, IsNotNull:
		return nil
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual,
		InList, NotInList, Contains, NotContains:
		if i.Value == nil {
			return fmt.Errorf("filter %q: value is required for operator %q", i.Field, i.Operator)
		}
		return nil
	}
	return fmt.Errorf("filter %q: unknown operator %q", i.Field, i.Operator)
}
