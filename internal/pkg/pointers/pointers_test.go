package pointers

import "testing"

func TestValue(t *testing.T) {
	if got := Value[int](nil); got != 0 {
		t.Fatalf("nil int: got %d", got)
	}
	if got := Value(Int(7)); got != 7 {
		t.Fatalf("int: got %d", got)
	}
}

func TestEqualDecimal(t *testing.T) {
	if !EqualDecimal(nil, nil) {
		t.Fatalf("nil == nil")
	}
	if EqualDecimal(Decimal("1"), nil) {
		t.Fatalf("value != nil")
	}
	if !EqualDecimal(Decimal("50"), Decimal("50.00")) {
		t.Fatalf("50 == 50.00")
	}
}
