package accounts

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

// Payer is an individual payer. Info is carried through to the registry untouched.
type Payer struct {
	ID   int64
	Info registry.PayerInfo
}

func newPayer(info *registry.PayerInfo) Payer {
	p := Payer{Info: *info}
	if info.Individual != nil {
		ind := *info.Individual
		if ind.Document != nil {
			doc := *ind.Document
			ind.Document = &doc
		}
		p.Info.Individual = &ind
	}
	p.Info.Organization = nil
	return p
}

// Export returns a copy of the payer payload for an outbound request.
func (p Payer) Export() *registry.PayerInfo {
	cp := newPayer(&p.Info)
	return &cp.Info
}

func (p Payer) individual() registry.IndividualPayer {
	if p.Info.Individual == nil {
		return registry.IndividualPayer{}
	}
	return *p.Info.Individual
}

func payerFromRow(row *gateway.Row) (Payer, error) {
	var (
		p   Payer
		err error
	)
	if p.ID, err = row.Int64(store.ColPayerID); err != nil {
		return p, err
	}
	raw, err := row.JSON(store.ColPayerInfo)
	if err != nil {
		return p, err
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &p.Info); err != nil {
			return p, err
		}
	}
	if p.Info.Individual == nil {
		// rows written before the payload column existed only carry the name columns
		ind := registry.IndividualPayer{}
		if ind.Surname, err = row.String(store.ColSurname); err != nil {
			return p, err
		}
		if ind.FirstName, err = row.String(store.ColFirstName); err != nil {
			return p, err
		}
		if ind.Patronymic, err = row.String(store.ColPatronymic); err != nil {
			return p, err
		}
		if ind.SNILS, err = row.String(store.ColSNILS); err != nil {
			return p, err
		}
		p.Info.Individual = &ind
	}
	return p, nil
}

func loadPayers(q gateway.Querier, accountID int64) ([]Payer, error) {
	rows, err := q.GetView(payersByAccountQuery, map[string]any{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	out := make([]Payer, 0, len(rows))
	for _, row := range rows {
		p, err := payerFromRow(row)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInvariantViolation, "Accounts.LoadPayers", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// upsert writes the payer detail row keyed by name and SNILS.
func (p *Payer) upsert(gw gateway.Gateway) (*gateway.Row, error) {
	ind := p.individual()
	row, err := gw.GetRowOrNew(store.TablePayer,
		[]string{store.ColSurname, store.ColFirstName, store.ColPatronymic, store.ColSNILS},
		ind.Surname, ind.FirstName, ind.Patronymic, ind.SNILS,
	)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p.Info)
	if err != nil {
		return nil, err
	}
	row.Set(store.ColPayerInfo, datatypes.JSON(raw))
	if p.ID, err = row.ID(); err != nil {
		return nil, err
	}
	return row, nil
}
