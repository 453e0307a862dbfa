package accounts

import (
	"fmt"

	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

// AccountType is the stored account-type code (account_data.account_type).
type AccountType int

const (
	AccountTypeUnknown  AccountType = 0
	AccountTypeUO       AccountType = 1 // managing organisation
	AccountTypeRSO      AccountType = 2 // resource supplier
	AccountTypeRC       AccountType = 3 // settlement centre
	AccountTypeOGVorOMS AccountType = 4 // state or municipal body
	AccountTypeCR       AccountType = 5 // capital repairs
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeUO:
		return "uo"
	case AccountTypeRSO:
		return "rso"
	case AccountTypeRC:
		return "rc"
	case AccountTypeOGVorOMS:
		return "ogv_or_oms"
	case AccountTypeCR:
		return "cr"
	default:
		return fmt.Sprintf("account_type(%d)", int(t))
	}
}

type AccountTypePair struct {
	Internal AccountType
	Wire     registry.AccountKind
}

// DefaultAccountTypePairs is the fixed correspondence with the registry.
func DefaultAccountTypePairs() []AccountTypePair {
	return []AccountTypePair{
		{AccountTypeUO, registry.AccountKindUO},
		{AccountTypeRSO, registry.AccountKindRSO},
		{AccountTypeRC, registry.AccountKindRC},
		{AccountTypeOGVorOMS, registry.AccountKindOGVorOMS},
		{AccountTypeCR, registry.AccountKindCR},
	}
}

// AccountTypeMapper translates account types in both directions.
type AccountTypeMapper struct {
	toWire     map[AccountType]registry.AccountKind
	toInternal map[registry.AccountKind]AccountType
	order      []AccountType
}

// NewAccountTypeMapper rejects tables that are not one-to-one.
func NewAccountTypeMapper(pairs []AccountTypePair) (*AccountTypeMapper, error) {
	m := &AccountTypeMapper{
		toWire:     make(map[AccountType]registry.AccountKind, len(pairs)),
		toInternal: make(map[registry.AccountKind]AccountType, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := m.toWire[p.Internal]; dup {
			return nil, fmt.Errorf("account type %s mapped twice", p.Internal)
		}
		if _, dup := m.toInternal[p.Wire]; dup {
			return nil, fmt.Errorf("registry account kind %q mapped twice", p.Wire)
		}
		m.toWire[p.Internal] = p.Wire
		m.toInternal[p.Wire] = p.Internal
		m.order = append(m.order, p.Internal)
	}
	return m, nil
}

func mustAccountTypeMapper(pairs []AccountTypePair) *AccountTypeMapper {
	m, err := NewAccountTypeMapper(pairs)
	if err != nil {
		panic(err)
	}
	return m
}

var defaultAccountTypes = mustAccountTypeMapper(DefaultAccountTypePairs())

// DefaultAccountTypes returns the mapper built from DefaultAccountTypePairs.
func DefaultAccountTypes() *AccountTypeMapper { return defaultAccountTypes }

func (m *AccountTypeMapper) ToWire(t AccountType) (registry.AccountKind, error) {
	kind, ok := m.toWire[t]
	if !ok {
		return "", domainagg.Errorf(domainagg.CodeInvariantViolation, "Accounts.AccountType.ToWire", "no registry account kind for %s", t)
	}
	return kind, nil
}

func (m *AccountTypeMapper) FromWire(kind registry.AccountKind) (AccountType, error) {
	t, ok := m.toInternal[kind]
	if !ok {
		return AccountTypeUnknown, domainagg.Errorf(domainagg.CodeInvariantViolation, "Accounts.AccountType.FromWire", "no account type for registry kind %q", kind)
	}
	return t, nil
}

// Types lists the mapped internal types in table order.
func (m *AccountTypeMapper) Types() []AccountType {
	return append([]AccountType(nil), m.order...)
}
