package accounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/logger"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

type hydration int

const (
	hydrationNone hydration = iota
	hydrationStore
	hydrationExternal
	hydrationMerged
)

func (h hydration) String() string {
	switch h {
	case hydrationStore:
		return "store"
	case hydrationExternal:
		return "external"
	case hydrationMerged:
		return "merged"
	default:
		return "uninitialized"
	}
}

// Account is one billing account with its payers, premises and rooms.
// An Account is built fresh per hydration and is not safe for concurrent use.
type Account struct {
	ID                  int64
	GUID                string
	Number              string
	CreationDate        *time.Time
	TotalSquare         *decimal.Decimal
	LivingSquare        *decimal.Decimal
	HeatedSquare        *decimal.Decimal
	LivingPersonsNumber *int
	Type                AccountType
	HouseID             int64

	Payers   []Payer
	Premises []Premise
	Rooms    []Room

	types *AccountTypeMapper
	log   *logger.Logger
	state hydration
}

// NewAccount returns an uninitialized account owned by houseID.
func NewAccount(log *logger.Logger, houseID int64) *Account {
	if log == nil {
		log = logger.Nop()
	}
	return &Account{
		HouseID: houseID,
		types:   DefaultAccountTypes(),
		log:     log.With("component", "AccountAggregate"),
	}
}

// WithAccountTypes swaps the account-type table, for registries with a custom mapping.
func (a *Account) WithAccountTypes(m *AccountTypeMapper) *Account {
	if m != nil {
		a.types = m
	}
	return a
}

// Hydrated reports whether either hydration path has populated the account.
func (a *Account) Hydrated() bool { return a.state != hydrationNone }

// LoadFromStore populates the account from its account_data row, then loads
// payers, premises and rooms through their association joins. Fields are only
// assigned once every query has succeeded.
func (a *Account) LoadFromStore(q gateway.Querier, row *gateway.Row) error {
	const op = "Accounts.LoadFromStore"
	if row == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "account row is nil", nil)
	}
	if q == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "querier is nil", nil)
	}
	if a.state != hydrationNone {
		return domainagg.Errorf(domainagg.CodeInvariantViolation, op, "account already hydrated from %s", a.state)
	}

	next := Account{HouseID: a.HouseID}
	if err := next.scalarsFromRow(row); err != nil {
		return domainagg.Wrap(domainagg.CodeInvariantViolation, op, err)
	}
	var err error
	if next.Payers, err = loadPayers(q, next.ID); err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if next.Premises, err = loadPremises(q, next.ID); err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if next.Rooms, err = loadRooms(q, next.ID); err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	attachRooms(next.Premises, next.Rooms)

	a.assign(&next)
	a.state = hydrationStore
	a.log.Debug("Account loaded from store",
		"account_number", a.Number,
		"payers", len(a.Payers),
		"premises", len(a.Premises),
		"rooms", len(a.Rooms),
	)
	return nil
}

func (a *Account) scalarsFromRow(row *gateway.Row) error {
	var err error
	if a.ID, err = row.Int64(store.ColAccountDataID); err != nil {
		return err
	}
	if a.Number, err = row.String(store.ColNumber); err != nil {
		return err
	}
	if a.GUID, err = row.String(store.ColGUID); err != nil {
		return err
	}
	if row.Has(store.ColHouseID) {
		if houseID, err := row.Int64(store.ColHouseID); err == nil && houseID != 0 {
			a.HouseID = houseID
		}
	}
	if a.CreationDate, err = row.OptionalTime(store.ColCreationDate); err != nil {
		return err
	}
	if a.TotalSquare, err = row.OptionalDecimal(store.ColTotalSquare); err != nil {
		return err
	}
	if a.LivingSquare, err = row.OptionalDecimal(store.ColLivingSquare); err != nil {
		return err
	}
	if a.HeatedSquare, err = row.OptionalDecimal(store.ColHeatedSquare); err != nil {
		return err
	}
	if a.LivingPersonsNumber, err = row.OptionalInt(store.ColLivingPersonsNumber); err != nil {
		return err
	}
	// stored codes are checked against the mapper on export, not on load
	t, err := row.OptionalInt(store.ColAccountType)
	if err != nil {
		return err
	}
	if t != nil {
		a.Type = AccountType(*t)
	}
	return nil
}

func (a *Account) assign(next *Account) {
	a.ID = next.ID
	a.GUID = next.GUID
	a.Number = next.Number
	a.CreationDate = next.CreationDate
	a.TotalSquare = next.TotalSquare
	a.LivingSquare = next.LivingSquare
	a.HeatedSquare = next.HeatedSquare
	a.LivingPersonsNumber = next.LivingPersonsNumber
	a.Type = next.Type
	a.HouseID = next.HouseID
	a.Payers = next.Payers
	a.Premises = next.Premises
	a.Rooms = next.Rooms
}

// MergeResult reports what a merge could not place.
type MergeResult struct {
	Unresolved []registry.Accommodation
	// SkippedOrganizationPayer is set when the payload carried an organization payer.
	SkippedOrganizationPayer bool
}

// MergeFromExternal overwrites the account from a registry export. Scalars
// follow their presence flags. Accommodation references are matched against
// house; misses are logged once each, dropped, and returned in MergeResult.
func (a *Account) MergeFromExternal(payload *registry.AccountExportResult, house *House) (MergeResult, error) {
	const op = "Accounts.MergeFromExternal"
	var res MergeResult
	if payload == nil {
		return res, domainagg.NewError(domainagg.CodeValidation, op, "payload is nil", nil)
	}
	number := strings.TrimSpace(payload.AccountNumber)
	if number == "" {
		return res, domainagg.NewError(domainagg.CodeValidation, op, "payload has no account number", nil)
	}
	for i, acc := range payload.Accommodation {
		if !acc.Kind.Valid() {
			return res, domainagg.Errorf(domainagg.CodeValidation, op, "accommodation %d has unknown kind %q", i, acc.Kind)
		}
	}
	t, err := a.types.FromWire(payload.AccountType)
	if err != nil {
		return res, err
	}

	var (
		premises []Premise
		rooms    []Room
	)
	for _, acc := range payload.Accommodation {
		switch acc.Kind {
		case registry.AccommodationPremises:
			match := house.PremiseByGUID(acc.GUID)
			if match == nil {
				res.Unresolved = append(res.Unresolved, acc)
				a.logUnresolved(number, acc)
				continue
			}
			p := match.clone()
			share := registry.OptionalDecimal(acc.SharePercent, acc.SharePercentSpecified)
			if err := ValidateSharePercent(share); err != nil {
				return MergeResult{}, err
			}
			p.Base().SharePercent = share
			premises = append(premises, p)
		case registry.AccommodationLivingRoom:
			match, ok := house.RoomByGUID(acc.GUID)
			if !ok {
				res.Unresolved = append(res.Unresolved, acc)
				a.logUnresolved(number, acc)
				continue
			}
			rooms = append(rooms, match)
		}
	}

	var payers []Payer
	if info := payload.PayerInfo; info != nil {
		if info.Individual != nil {
			payers = append(payers, newPayer(info))
		} else if info.Organization != nil {
			res.SkippedOrganizationPayer = true
			a.log.Info("Organization payer skipped", "account_number", number)
		}
	}

	a.Number = number
	a.GUID = payload.AccountGUID
	a.CreationDate = registry.OptionalTime(payload.CreationDate, payload.CreationDateSpecified)
	a.TotalSquare = registry.OptionalDecimal(payload.TotalSquare, payload.TotalSquareSpecified)
	a.LivingSquare = registry.OptionalDecimal(payload.ResidentialSquare, payload.ResidentialSquareSpecified)
	a.HeatedSquare = registry.OptionalDecimal(payload.HeatedArea, payload.HeatedAreaSpecified)
	a.LivingPersonsNumber = registry.OptionalInt8(payload.LivingPersonsNumber, payload.LivingPersonsNumberSpecified)
	a.Type = t
	if len(payers) > 0 {
		a.Payers = payers
	}
	if len(premises) > 0 {
		a.Premises = premises
	}
	if len(rooms) > 0 {
		a.Rooms = rooms
	}

	if a.state == hydrationNone {
		a.state = hydrationExternal
	} else {
		a.state = hydrationMerged
	}
	return res, nil
}

func (a *Account) logUnresolved(number string, acc registry.Accommodation) {
	a.log.Warn("Accommodation not found in house catalogue",
		"account_number", number,
		"kind", string(acc.Kind),
		"guid", acc.GUID,
	)
}
