package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

// PremiseKind doubles as the stored discriminant.
type PremiseKind int

const (
	PremiseResidential    PremiseKind = store.PremisesTypeResidential
	PremiseNonResidential PremiseKind = store.PremisesTypeNonResidential
)

func (k PremiseKind) String() string {
	switch k {
	case PremiseResidential:
		return "residential"
	case PremiseNonResidential:
		return "non_residential"
	default:
		return "unknown"
	}
}

var (
	sharePercentMin = decimal.Zero
	sharePercentMax = decimal.NewFromInt(100)
)

// PremiseBase holds what both premise variants share.
type PremiseBase struct {
	ID           int64
	Number       string
	GUID         string
	SharePercent *decimal.Decimal
}

// Premise is either *ResidentialPremise or *NonResidentialPremise.
type Premise interface {
	Kind() PremiseKind
	Base() *PremiseBase
	clone() Premise
}

type ResidentialPremise struct {
	PremiseBase
	Rooms []Room
}

type NonResidentialPremise struct {
	PremiseBase
}

func (p *ResidentialPremise) Kind() PremiseKind  { return PremiseResidential }
func (p *ResidentialPremise) Base() *PremiseBase { return &p.PremiseBase }
func (p *ResidentialPremise) clone() Premise {
	c := *p
	c.Rooms = append([]Room(nil), p.Rooms...)
	return &c
}

func (p *NonResidentialPremise) Kind() PremiseKind  { return PremiseNonResidential }
func (p *NonResidentialPremise) Base() *PremiseBase { return &p.PremiseBase }
func (p *NonResidentialPremise) clone() Premise {
	c := *p
	return &c
}

// ValidateSharePercent accepts nil or a value in [0, 100].
func ValidateSharePercent(p *decimal.Decimal) error {
	if p == nil {
		return nil
	}
	if p.LessThan(sharePercentMin) || p.GreaterThan(sharePercentMax) {
		return domainagg.Errorf(domainagg.CodeValidation, "Accounts.SharePercent", "share percent %s outside [0, 100]", p.String())
	}
	return nil
}

// ResolvePremise builds the typed premise for a premises row joined with its
// account association. Unknown discriminants mean corrupt source data.
func ResolvePremise(row *gateway.Row) (Premise, error) {
	const op = "Accounts.ResolvePremise"
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "premise row is nil", nil)
	}
	discriminant, err := row.OptionalInt(store.ColPremisesTypeID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInvariantViolation, op, err)
	}
	if discriminant == nil {
		return nil, domainagg.NewError(domainagg.CodeInvariantViolation, op, "premise has no type", nil)
	}

	base, err := premiseBaseFromRow(row)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInvariantViolation, op, err)
	}
	if err := ValidateSharePercent(base.SharePercent); err != nil {
		return nil, err
	}

	switch PremiseKind(*discriminant) {
	case PremiseResidential:
		return &ResidentialPremise{PremiseBase: base}, nil
	case PremiseNonResidential:
		return &NonResidentialPremise{PremiseBase: base}, nil
	default:
		return nil, domainagg.Errorf(domainagg.CodeInvariantViolation, op, "unrecognized premise type %d for premise %q", *discriminant, base.Number)
	}
}

func premiseBaseFromRow(row *gateway.Row) (PremiseBase, error) {
	var (
		b   PremiseBase
		err error
	)
	if b.ID, err = row.Int64(store.ColPremisesID); err != nil {
		return b, err
	}
	if b.Number, err = row.String(store.ColPremisesNum); err != nil {
		return b, err
	}
	if b.GUID, err = row.String(store.ColGUID); err != nil {
		return b, err
	}
	if b.SharePercent, err = row.OptionalDecimal(store.ColSharePercent); err != nil {
		return b, err
	}
	return b, nil
}

func loadPremises(q gateway.Querier, accountID int64) ([]Premise, error) {
	rows, err := q.GetView(premisesByAccountQuery, map[string]any{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	out := make([]Premise, 0, len(rows))
	for _, row := range rows {
		p, err := ResolvePremise(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// exportPremise renders p for an outbound request. Premises loaded from the
// store may lack a GUID; house then supplies it by premise number.
func exportPremise(p Premise, house *House) (registry.Accommodation, error) {
	base := p.Base()
	guid := base.GUID
	if guid == "" {
		if match := house.PremiseByNumber(base.Number); match != nil {
			guid = match.Base().GUID
		}
	}
	if guid == "" {
		return registry.Accommodation{}, domainagg.Errorf(domainagg.CodePreconditionFailed, "Accounts.ExportPremise", "premise %q has no registry guid", base.Number)
	}
	share, specified := registry.SpecifiedDecimal(base.SharePercent)
	return registry.Accommodation{
		Kind:                  registry.AccommodationPremises,
		GUID:                  guid,
		SharePercent:          share,
		SharePercentSpecified: specified,
	}, nil
}
