package aggregates

import (
	"context"
	"strings"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/modules/accounts"
	"github.com/yungbote/accountsync/internal/platform/dbctx"
)

const accountByNumberQuery = `SELECT * FROM account_data WHERE number = @number`

type AccountAggregateDeps struct {
	Base BaseDeps

	EdgePolicy accounts.EdgePolicy
	// Types overrides the default account-type table when set.
	Types *accounts.AccountTypeMapper
}

type accountAggregate struct {
	deps AccountAggregateDeps
}

func NewAccountAggregate(deps AccountAggregateDeps) domainagg.AccountAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.EdgePolicy == "" {
		deps.EdgePolicy = accounts.EdgePolicyAppendOnly
	}
	return &accountAggregate{deps: deps}
}

func (a *accountAggregate) Contract() domainagg.Contract {
	return domainagg.AccountAggregateContract
}

func (a *accountAggregate) newAccount(houseID int64) *accounts.Account {
	return accounts.NewAccount(a.deps.Base.Log, houseID).WithAccountTypes(a.deps.Types)
}

func (a *accountAggregate) gateway(dbc dbctx.Context) gateway.Gateway {
	return gateway.New(dbc, a.deps.Base.DB, a.deps.Base.Log)
}

// loadStored hydrates the stored account for number, or returns nil when none exists.
func (a *accountAggregate) loadStored(gw gateway.Querier, number string, houseID int64) (*accounts.Account, error) {
	rows, err := gw.GetView(accountByNumberQuery, map[string]any{"number": number})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	acc := a.newAccount(houseID)
	if err := acc.LoadFromStore(gw, rows[0]); err != nil {
		return nil, err
	}
	return acc, nil
}

func (a *accountAggregate) ApplyExport(ctx context.Context, in domainagg.ApplyExportInput) (domainagg.ApplyExportResult, error) {
	const op = "Accounts.Account.ApplyExport"
	var out domainagg.ApplyExportResult
	if in.Export == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing export", nil)
	}
	number := strings.TrimSpace(in.Export.AccountNumber)
	if number == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing account number", nil)
	}
	house := accounts.HouseFromExport(in.House)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		gw := a.gateway(dbc)
		acc, err := a.loadStored(gw, number, in.HouseID)
		if err != nil {
			return err
		}
		created := acc == nil
		if created {
			acc = a.newAccount(in.HouseID)
		} else if in.HouseID != 0 {
			acc.HouseID = in.HouseID
		}
		merged, err := acc.MergeFromExternal(in.Export, house)
		if err != nil {
			return err
		}
		if err := acc.Persist(gw, a.deps.EdgePolicy); err != nil {
			return err
		}
		out = domainagg.ApplyExportResult{
			AccountID:     acc.ID,
			AccountNumber: acc.Number,
			Created:       created,
			Unresolved:    merged.Unresolved,
		}
		return nil
	})
	if err != nil {
		return domainagg.ApplyExportResult{}, err
	}
	return out, nil
}

func (a *accountAggregate) BuildImport(ctx context.Context, in domainagg.BuildImportInput) (domainagg.BuildImportResult, error) {
	const op = "Accounts.Account.BuildImport"
	var out domainagg.BuildImportResult
	number := strings.TrimSpace(in.AccountNumber)
	if number == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing account number", nil)
	}
	mode, err := accounts.ParseOutboundMode(in.Mode)
	if err != nil {
		return out, err
	}
	house := accounts.HouseFromExport(in.House)

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		acc, err := a.loadStored(a.gateway(dbc), number, 0)
		if err != nil {
			return err
		}
		if acc == nil {
			return domainagg.Errorf(domainagg.CodeNotFound, op, "account %q not found", number)
		}
		reqs, err := acc.BuildOutboundRequests(mode, in.AccountGUID, house)
		if err != nil {
			return err
		}
		out = domainagg.BuildImportResult{AccountID: acc.ID, Requests: reqs}
		return nil
	})
	if err != nil {
		return domainagg.BuildImportResult{}, err
	}
	return out, nil
}

func (a *accountAggregate) RecordImportResults(ctx context.Context, in domainagg.RecordImportInput) (domainagg.RecordImportResult, error) {
	const op = "Accounts.Account.RecordImportResults"
	var out domainagg.RecordImportResult
	number := strings.TrimSpace(in.AccountNumber)
	if number == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing account number", nil)
	}
	for _, r := range in.Results {
		if r.Error != nil {
			out.Failures = append(out.Failures, r)
			continue
		}
		if out.GUID == "" && strings.TrimSpace(r.GUID) != "" {
			out.GUID = strings.TrimSpace(r.GUID)
		}
	}
	if out.GUID == "" {
		return out, nil
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		gw := a.gateway(dbc)
		rows, err := gw.GetView(accountByNumberQuery, map[string]any{"number": number})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return domainagg.Errorf(domainagg.CodeNotFound, op, "account %q not found", number)
		}
		row, err := gw.GetRowOrNew(store.TableAccountData, []string{store.ColNumber}, number)
		if err != nil {
			return err
		}
		row.Set(store.ColGUID, out.GUID)
		return gw.Save()
	})
	if err != nil {
		return domainagg.RecordImportResult{}, err
	}
	return out, nil
}
