package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(CodeValidation, "Accounts.Load", "row is nil", nil)
	if got := err.Error(); got != "Accounts.Load: row is nil (validation)" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := NewError(CodeInternal, "", "", nil).Error(); got != "internal" {
		t.Fatalf("bare code: %q", got)
	}
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := Errorf(CodeInvariantViolation, "Premises.Resolve", "unknown premise type %d", 7)
	outer := Wrap(CodeInternal, "Accounts.Load", fmt.Errorf("load premises: %w", inner))
	if !IsCode(outer, CodeInvariantViolation) {
		t.Fatalf("expected invariant code to survive wrap, got %s", CodeOf(outer))
	}
	if !errors.Is(outer, inner) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
	if Wrap(CodeInternal, "x", nil) != nil {
		t.Fatalf("wrap(nil) must be nil")
	}
}

func TestWrapRendersCauseOnce(t *testing.T) {
	inner := Errorf(CodeInvariantViolation, "Premises.Resolve", "unknown premise type %d", 7)
	got := Wrap(CodeInternal, "Accounts.Load", inner).Error()
	if got != "Accounts.Load: Premises.Resolve: unknown premise type 7 (invariant_violation)" {
		t.Fatalf("unexpected message: %q", got)
	}
	plain := Wrap(CodeInternal, "Accounts.Load", errors.New("sql: no rows")).Error()
	if plain != "Accounts.Load: sql: no rows (internal)" {
		t.Fatalf("unexpected message: %q", plain)
	}
}
