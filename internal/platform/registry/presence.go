package registry

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/accountsync/internal/pkg/pointers"
)

// The registry encodes optional fields as (value, specified) pairs.
// These helpers are the only place that pairing is translated.

func OptionalDecimal(v decimal.Decimal, specified bool) *decimal.Decimal {
	if !specified {
		return nil
	}
	return pointers.Ptr(v)
}

func SpecifiedDecimal(p *decimal.Decimal) (decimal.Decimal, bool) {
	return pointers.Value(p), p != nil
}

func OptionalTime(v time.Time, specified bool) *time.Time {
	if !specified {
		return nil
	}
	return pointers.Time(v)
}

func SpecifiedTime(p *time.Time) (time.Time, bool) {
	return pointers.Value(p), p != nil
}

func OptionalInt8(v int8, specified bool) *int {
	if !specified {
		return nil
	}
	return pointers.Int(int(v))
}

// SpecifiedInt8 narrows *p to the wire width. Values outside int8 are an error.
func SpecifiedInt8(p *int) (int8, bool, error) {
	if p == nil {
		return 0, false, nil
	}
	if *p < math.MinInt8 || *p > math.MaxInt8 {
		return 0, false, fmt.Errorf("value %d does not fit int8", *p)
	}
	return int8(*p), true, nil
}
