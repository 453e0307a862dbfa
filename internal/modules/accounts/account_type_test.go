package accounts

import (
	"testing"

	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

func TestAccountTypeRoundTrip(t *testing.T) {
	m := DefaultAccountTypes()
	for _, typ := range m.Types() {
		wire, err := m.ToWire(typ)
		if err != nil {
			t.Fatalf("ToWire(%s): %v", typ, err)
		}
		back, err := m.FromWire(wire)
		if err != nil {
			t.Fatalf("FromWire(%q): %v", wire, err)
		}
		if back != typ {
			t.Fatalf("round trip: %s -> %q -> %s", typ, wire, back)
		}
	}
	for _, p := range DefaultAccountTypePairs() {
		typ, err := m.FromWire(p.Wire)
		if err != nil || typ != p.Internal {
			t.Fatalf("FromWire(%q) = %s, %v", p.Wire, typ, err)
		}
	}
}

func TestAccountTypeMisses(t *testing.T) {
	m := DefaultAccountTypes()
	if _, err := m.ToWire(AccountTypeUnknown); !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation for unknown type, got %v", err)
	}
	if _, err := m.FromWire(registry.AccountKind("isXYZAccount")); !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation for unknown kind, got %v", err)
	}
}

func TestNewAccountTypeMapperRejectsDuplicates(t *testing.T) {
	cases := []struct {
		name  string
		pairs []AccountTypePair
	}{
		{"duplicate internal", []AccountTypePair{
			{AccountTypeUO, registry.AccountKindUO},
			{AccountTypeUO, registry.AccountKindRSO},
		}},
		{"duplicate wire", []AccountTypePair{
			{AccountTypeUO, registry.AccountKindUO},
			{AccountTypeRSO, registry.AccountKindUO},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewAccountTypeMapper(tc.pairs); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
