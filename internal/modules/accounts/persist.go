package accounts

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
)

// EdgePolicy decides what happens to an account's existing association edges on Persist.
type EdgePolicy string

const (
	// EdgePolicyAppendOnly inserts fresh edges and never removes old ones.
	EdgePolicyAppendOnly EdgePolicy = "append-only"
	// EdgePolicyFullReplace deletes the account's edges before inserting the current ones.
	EdgePolicyFullReplace EdgePolicy = "full-replace"
)

func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch EdgePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EdgePolicyAppendOnly:
		return EdgePolicyAppendOnly, nil
	case EdgePolicyFullReplace:
		return EdgePolicyFullReplace, nil
	default:
		return "", fmt.Errorf("unknown edge policy %q", s)
	}
}

var edgeTables = []string{
	store.TableAccountToPayer,
	store.TableAccountToPremises,
	store.TableAccountToLivingRoom,
}

// Persist upserts the account by number, then each payer, premise and room,
// linking each to the account with a new association edge.
func (a *Account) Persist(gw gateway.Gateway, policy EdgePolicy) error {
	const op = "Accounts.Persist"
	if gw == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "gateway is nil", nil)
	}
	if a.state == hydrationNone {
		return domainagg.NewError(domainagg.CodePreconditionFailed, op, "account is not hydrated", nil)
	}
	if strings.TrimSpace(a.Number) == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "account has no number", nil)
	}
	if policy == "" {
		policy = EdgePolicyAppendOnly
	}
	if policy != EdgePolicyAppendOnly && policy != EdgePolicyFullReplace {
		return domainagg.Errorf(domainagg.CodeValidation, op, "unknown edge policy %q", policy)
	}

	accountRow, err := gw.GetRowOrNew(store.TableAccountData, []string{store.ColNumber}, a.Number)
	if err != nil {
		return err
	}
	a.writeScalars(accountRow)
	if err := gw.Save(); err != nil {
		return err
	}
	if a.ID, err = accountRow.ID(); err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	if policy == EdgePolicyFullReplace {
		for _, table := range edgeTables {
			if err := gw.DeleteRows(table, []string{store.ColAccountDataID}, a.ID); err != nil {
				return err
			}
		}
	}

	for i := range a.Payers {
		if _, err := a.Payers[i].upsert(gw); err != nil {
			return err
		}
		edge := gw.NewRow(store.TableAccountToPayer)
		edge.Set(store.ColAccountDataID, a.ID)
		edge.Set(store.ColPayerID, a.Payers[i].ID)
	}

	for _, p := range a.Premises {
		base := p.Base()
		if err := ValidateSharePercent(base.SharePercent); err != nil {
			return err
		}
		if err := a.upsertPremise(gw, p); err != nil {
			return err
		}
		edge := gw.NewRow(store.TableAccountToPremises)
		edge.Set(store.ColAccountDataID, a.ID)
		edge.Set(store.ColPremisesID, base.ID)
		edge.Set(store.ColSharePercent, shareValue(base.SharePercent))
	}

	for i := range a.Rooms {
		if err := a.upsertRoom(gw, &a.Rooms[i]); err != nil {
			return err
		}
		edge := gw.NewRow(store.TableAccountToLivingRoom)
		edge.Set(store.ColAccountDataID, a.ID)
		edge.Set(store.ColPremisesLivingRoomID, a.Rooms[i].ID)
	}

	if err := gw.Save(); err != nil {
		return err
	}
	a.log.Debug("Account persisted",
		"account_number", a.Number,
		"account_id", a.ID,
		"edge_policy", string(policy),
		"payers", len(a.Payers),
		"premises", len(a.Premises),
		"rooms", len(a.Rooms),
	)
	return nil
}

func (a *Account) writeScalars(row *gateway.Row) {
	row.Set(store.ColGUID, a.GUID)
	row.Set(store.ColHouseID, a.HouseID)
	row.Set(store.ColCreationDate, a.CreationDate)
	row.Set(store.ColTotalSquare, a.TotalSquare)
	row.Set(store.ColLivingSquare, a.LivingSquare)
	row.Set(store.ColHeatedSquare, a.HeatedSquare)
	row.Set(store.ColLivingPersonsNumber, a.LivingPersonsNumber)
	row.Set(store.ColAccountType, int(a.Type))
}

func (a *Account) upsertPremise(gw gateway.Gateway, p Premise) error {
	base := p.Base()
	row, err := gw.GetRowOrNew(store.TablePremises, []string{store.ColHouseID, store.ColPremisesNum}, a.HouseID, base.Number)
	if err != nil {
		return err
	}
	row.Set(store.ColPremisesTypeID, int(p.Kind()))
	if base.GUID != "" {
		row.Set(store.ColGUID, base.GUID)
	}
	base.ID, err = row.ID()
	return err
}

// upsertRoom locates the owning premise by number, creating it as residential
// when the house has not been persisted yet. The room row is keyed by premise and room number.
func (a *Account) upsertRoom(gw gateway.Gateway, r *Room) error {
	premiseRow, err := gw.GetRowOrNew(store.TablePremises, []string{store.ColHouseID, store.ColPremisesNum}, a.HouseID, r.PremiseNumber)
	if err != nil {
		return err
	}
	if premiseRow.Get(store.ColPremisesTypeID) == nil {
		premiseRow.Set(store.ColPremisesTypeID, int(PremiseResidential))
	}
	premiseID, err := premiseRow.ID()
	if err != nil {
		return err
	}
	row, err := gw.GetRowOrNew(store.TablePremisesLivingRoom, []string{store.ColPremisesID, store.ColRoomNum}, premiseID, r.Number)
	if err != nil {
		return err
	}
	if r.GUID != "" {
		row.Set(store.ColGUID, r.GUID)
	}
	r.ID, err = row.ID()
	return err
}

func shareValue(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}
