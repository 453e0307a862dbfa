package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
)

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"record not found", fmt.Errorf("load account: %w", gorm.ErrRecordNotFound), domainagg.CodeNotFound},
		{"cancelled", context.Canceled, domainagg.CodeRetryable},
		{"deadline", context.DeadlineExceeded, domainagg.CodeRetryable},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg foreign key", fmt.Errorf("insert account_to_payer: %w", &pgconn.PgError{Code: "23503"}), domainagg.CodePreconditionFailed},
		{"pg numeric overflow", &pgconn.PgError{Code: "22003"}, domainagg.CodeValidation},
		{"pg serialization", fmt.Errorf("update account_data: %w", &pgconn.PgError{Code: "40001"}), domainagg.CodeRetryable},
		{"pg other", &pgconn.PgError{Code: "42P01"}, domainagg.CodeInternal},
		{"sqlite unique", errors.New("UNIQUE constraint failed: account_data.number"), domainagg.CodeConflict},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), domainagg.CodePreconditionFailed},
		{"sqlite locked", errors.New("database is locked"), domainagg.CodeRetryable},
		{"unknown", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("Accounts.Account.ApplyExport", tc.err)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %s, got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("mapped error lost its cause: %v", got)
			}
		})
	}
}

func TestMapErrorKeepsExistingCode(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeInvariantViolation, "accounts.load", "unknown premise type", nil)
	if out := MapError("Accounts.Account.ApplyExport", in); out != in {
		t.Fatalf("expected the coded error unchanged, got %v", out)
	}
	wrapped := fmt.Errorf("persist: %w", in)
	if out := MapError("Accounts.Account.ApplyExport", wrapped); !domainagg.IsCode(out, domainagg.CodeInvariantViolation) {
		t.Fatalf("wrapped code lost: %v", out)
	}
}

func TestMapErrorNil(t *testing.T) {
	if err := MapError("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
