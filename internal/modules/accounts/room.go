package accounts

import (
	"slices"

	"github.com/yungbote/accountsync/internal/data/gateway"
	store "github.com/yungbote/accountsync/internal/domain/accounts"
	domainagg "github.com/yungbote/accountsync/internal/domain/aggregates"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

// Room is a living room inside a residential premise.
type Room struct {
	ID            int64
	Number        string
	GUID          string
	PremiseNumber string
}

func roomFromRow(row *gateway.Row) (Room, error) {
	var (
		r   Room
		err error
	)
	if r.ID, err = row.Int64(store.ColPremisesLivingRoomID); err != nil {
		return r, err
	}
	if r.Number, err = row.String(store.ColRoomNum); err != nil {
		return r, err
	}
	if r.GUID, err = row.String(store.ColGUID); err != nil {
		return r, err
	}
	if r.PremiseNumber, err = row.String(store.ColPremisesNum); err != nil {
		return r, err
	}
	return r, nil
}

func loadRooms(q gateway.Querier, accountID int64) ([]Room, error) {
	rows, err := q.GetView(roomsByAccountQuery, map[string]any{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	out := make([]Room, 0, len(rows))
	for _, row := range rows {
		r, err := roomFromRow(row)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInvariantViolation, "Accounts.LoadRooms", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// attachRooms hangs each room on the account's residential premise with the same number.
// Rooms whose premise is not linked to the account stay only in the account's room list.
func attachRooms(premises []Premise, rooms []Room) {
	byNumber := make(map[string]*ResidentialPremise, len(premises))
	for _, p := range premises {
		rp, ok := p.(*ResidentialPremise)
		if !ok {
			continue
		}
		if _, dup := byNumber[rp.Number]; !dup {
			byNumber[rp.Number] = rp
		}
	}
	for _, r := range rooms {
		rp, ok := byNumber[r.PremiseNumber]
		if !ok || slices.ContainsFunc(rp.Rooms, func(have Room) bool { return have.Number == r.Number }) {
			continue
		}
		rp.Rooms = append(rp.Rooms, r)
	}
}

func exportRoom(r Room, house *House) (registry.Accommodation, error) {
	guid := r.GUID
	if guid == "" {
		if match, ok := house.RoomByNumber(r.PremiseNumber, r.Number); ok {
			guid = match.GUID
		}
	}
	if guid == "" {
		return registry.Accommodation{}, domainagg.Errorf(domainagg.CodePreconditionFailed, "Accounts.ExportRoom", "room %q of premise %q has no registry guid", r.Number, r.PremiseNumber)
	}
	return registry.Accommodation{Kind: registry.AccommodationLivingRoom, GUID: guid}, nil
}
