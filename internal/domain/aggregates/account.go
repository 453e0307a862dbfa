package aggregates

import (
	"context"

	"github.com/yungbote/accountsync/internal/platform/registry"
)

var AccountAggregateContract = Contract{
	Name:             "Accounts.AccountAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyFullGraph,
	Notes:            "Owns account, payer, premise and room rows plus their association edges for one account number.",
}

// AccountAggregate reconciles one stored account with the registry.
//
// Method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvariantViolation, CodePreconditionFailed, CodeConflict, CodeRetryable, CodeInternal.
type AccountAggregate interface {
	Aggregate

	// ApplyExport merges a registry account export into the stored account and persists it atomically.
	ApplyExport(ctx context.Context, in ApplyExportInput) (ApplyExportResult, error)

	// BuildImport loads the stored account and renders its outbound import requests.
	BuildImport(ctx context.Context, in BuildImportInput) (BuildImportResult, error)

	// RecordImportResults stores the registry GUID assigned to an account by a successful import.
	RecordImportResults(ctx context.Context, in RecordImportInput) (RecordImportResult, error)
}

type ApplyExportInput struct {
	HouseID int64
	Export  *registry.AccountExportResult
	House   *registry.HouseExportResult
}

type ApplyExportResult struct {
	AccountID     int64
	AccountNumber string
	Created       bool
	Unresolved    []registry.Accommodation
}

type BuildImportInput struct {
	AccountNumber string
	// Mode is "create" or "update".
	Mode        string
	AccountGUID string
	House       *registry.HouseExportResult
}

type BuildImportResult struct {
	AccountID int64
	Requests  []registry.ImportAccountRequestAccount
}

type RecordImportInput struct {
	AccountNumber string
	Results       []registry.ImportResult
}

type RecordImportResult struct {
	GUID     string
	Failures []registry.ImportResult
}
