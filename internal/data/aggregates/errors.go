package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"gorm.io/gorm"
)

// MapError turns store and context failures raised inside an account write into aggregate
// error codes. Errors that already carry a code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	if code, ok := pgErrorCode(err); ok {
		return domainagg.Wrap(code, op, err)
	}
	return domainagg.Wrap(messageErrorCode(err), op, err)
}

func pgErrorCode(err error) (domainagg.ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch strings.TrimSpace(pgErr.Code) {
	case "23505": // unique_violation: two pulls created the same account number
		return domainagg.CodeConflict, true
	case "23503": // foreign_key_violation
		return domainagg.CodePreconditionFailed, true
	case "23514", "22003": // check_violation, numeric_value_out_of_range
		return domainagg.CodeValidation, true
	case "40001", "40P01", "55P03":
		return domainagg.CodeRetryable, true
	}
	return "", false
}

// messageErrorCode covers drivers without typed errors (sqlite) and wrapped pool errors.
func messageErrorCode(err error) domainagg.ErrorCode {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return domainagg.CodeConflict
	case strings.Contains(msg, "foreign key constraint failed"):
		return domainagg.CodePreconditionFailed
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.CodeRetryable
	default:
		return domainagg.CodeInternal
	}
}
