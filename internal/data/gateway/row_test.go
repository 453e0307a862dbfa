package gateway

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRowGettersCoerceDriverTypes(t *testing.T) {
	created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	row := NewRowFromValues("account_data", map[string]any{
		"ACCOUNT_DATA_ID":       []byte("42"),
		"number":                []byte("0001-01"),
		"total_square":          "54.30",
		"living_square":         float64(30.5),
		"heated_square":         nil,
		"living_persons_number": int64(3),
		"creation_date":         created,
	})

	id, err := row.ID()
	if err != nil || id != 42 {
		t.Fatalf("ID: got %d (%v)", id, err)
	}
	num, _ := row.String("number")
	if num != "0001-01" {
		t.Fatalf("number: got %q", num)
	}
	total, err := row.OptionalDecimal("total_square")
	if err != nil || !total.Equal(decimal.RequireFromString("54.3")) {
		t.Fatalf("total_square: got %v (%v)", total, err)
	}
	living, _ := row.OptionalDecimal("living_square")
	if !living.Equal(decimal.RequireFromString("30.5")) {
		t.Fatalf("living_square: got %v", living)
	}
	if heated, _ := row.OptionalDecimal("heated_square"); heated != nil {
		t.Fatalf("heated_square: expected nil, got %v", heated)
	}
	persons, _ := row.OptionalInt("living_persons_number")
	if persons == nil || *persons != 3 {
		t.Fatalf("living_persons_number: got %v", persons)
	}
	when, _ := row.OptionalTime("creation_date")
	if when == nil || !when.Equal(created) {
		t.Fatalf("creation_date: got %v", when)
	}
}

func TestRowSetNormalizesNilPointers(t *testing.T) {
	row := NewRowFromValues("payer", nil)
	row.Set("total_square", (*decimal.Decimal)(nil))
	if row.Get("total_square") != nil {
		t.Fatalf("nil pointer should be stored as nil")
	}
	if !row.Has("total_square") {
		t.Fatalf("column should be staged")
	}
	if _, err := row.Int64("missing"); err == nil {
		t.Fatalf("expected error for null int64")
	}
}

func TestRowUnwrapsScannedInterfacePointers(t *testing.T) {
	var info any = []byte(`{"individual":{"surname":"Petrov"}}`)
	var missing any
	row := NewRowFromValues("payer", map[string]any{
		"info":    &info,
		"snils":   &missing,
		"surname": (*any)(nil),
	})

	raw, err := row.JSON("info")
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if string(raw) != `{"individual":{"surname":"Petrov"}}` {
		t.Fatalf("info re-encoded: %s", raw)
	}
	if row.Get("snils") != nil || row.Get("surname") != nil {
		t.Fatalf("boxed nil should normalize to nil, got %v / %v", row.Get("snils"), row.Get("surname"))
	}
}
