package pointers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Value returns *p, or the zero value when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func Int(v int) *int              { return &v }
func Time(v time.Time) *time.Time { return &v }

// Decimal parses s; it panics on malformed input and is meant for literals.
func Decimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// EqualDecimal compares two optional decimals by value.
func EqualDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
