package accounts

import (
	"strings"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

type OutboundMode int

const (
	OutboundCreate OutboundMode = iota
	OutboundUpdate
)

func (m OutboundMode) String() string {
	if m == OutboundUpdate {
		return "update"
	}
	return "create"
}

func ParseOutboundMode(s string) (OutboundMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "create":
		return OutboundCreate, nil
	case "update":
		return OutboundUpdate, nil
	default:
		return OutboundCreate, domainagg.Errorf(domainagg.CodeValidation, "Accounts.ParseOutboundMode", "unknown outbound mode %q", s)
	}
}

var newTransportGUID = uuid.NewString

// BuildOutboundRequests renders one import request per payer. Every request
// carries the full accommodation list: premises first, then rooms, each registry
// GUID once. house supplies registry GUIDs missing on store-hydrated premises and
// rooms. In update mode externalGUID, or the account's own GUID when empty, is
// stamped on every request.
func (a *Account) BuildOutboundRequests(mode OutboundMode, externalGUID string, house *House) ([]registry.ImportAccountRequestAccount, error) {
	const op = "Accounts.BuildOutboundRequests"
	if len(a.Payers) == 0 {
		return []registry.ImportAccountRequestAccount{}, nil
	}
	if a.state == hydrationNone {
		return nil, domainagg.NewError(domainagg.CodePreconditionFailed, op, "account is not hydrated", nil)
	}

	guid := ""
	if mode == OutboundUpdate {
		guid = strings.TrimSpace(externalGUID)
		if guid == "" {
			guid = a.GUID
		}
		if guid == "" {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, "update requires an account guid", nil)
		}
	}

	kind, err := a.types.ToWire(a.Type)
	if err != nil {
		return nil, err
	}

	// Append-only pulls can leave the same premise or room linked twice; each goes out once.
	accommodation := make([]registry.Accommodation, 0, len(a.Premises)+len(a.Rooms))
	type accommodationKey struct {
		kind registry.AccommodationKind
		guid string
	}
	seen := make(map[accommodationKey]bool, len(a.Premises)+len(a.Rooms))
	add := func(item registry.Accommodation) {
		key := accommodationKey{kind: item.Kind, guid: item.GUID}
		if seen[key] {
			return
		}
		seen[key] = true
		accommodation = append(accommodation, item)
	}
	for _, p := range a.Premises {
		item, err := exportPremise(p, house)
		if err != nil {
			return nil, err
		}
		add(item)
	}
	for _, r := range a.Rooms {
		item, err := exportRoom(r, house)
		if err != nil {
			return nil, err
		}
		add(item)
	}

	created, createdSpecified := registry.SpecifiedTime(a.CreationDate)
	total, totalSpecified := registry.SpecifiedDecimal(a.TotalSquare)
	living, livingSpecified := registry.SpecifiedDecimal(a.LivingSquare)
	heated, heatedSpecified := registry.SpecifiedDecimal(a.HeatedSquare)
	if n := a.LivingPersonsNumber; n != nil && *n < 0 {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "living persons number %d is negative", *n)
	}
	persons, personsSpecified, err := registry.SpecifiedInt8(a.LivingPersonsNumber)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "living persons number", err)
	}

	out := make([]registry.ImportAccountRequestAccount, 0, len(a.Payers))
	for _, payer := range a.Payers {
		out = append(out, registry.ImportAccountRequestAccount{
			AccountNumber:                a.Number,
			TransportGUID:                newTransportGUID(),
			AccountGUID:                  guid,
			CreationDate:                 created,
			CreationDateSpecified:        createdSpecified,
			AccountType:                  kind,
			PayerInfo:                    payer.Export(),
			TotalSquare:                  total,
			TotalSquareSpecified:         totalSpecified,
			ResidentialSquare:            living,
			ResidentialSquareSpecified:   livingSpecified,
			HeatedArea:                   heated,
			HeatedAreaSpecified:          heatedSpecified,
			LivingPersonsNumber:          persons,
			LivingPersonsNumberSpecified: personsSpecified,
			Accommodation:                append([]registry.Accommodation(nil), accommodation...),
		})
	}
	a.log.Debug("Outbound requests built",
		"account_number", a.Number,
		"mode", mode.String(),
		"requests", len(out),
		"accommodation", len(accommodation),
	)
	return out, nil
}
