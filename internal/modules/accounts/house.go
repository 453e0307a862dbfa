package accounts

import "github.com/yungbote/accountsync/internal/platform/registry"

// House is the read-only catalogue of one building's premises and rooms.
// Lookups compare identifiers ordinally. A nil *House matches nothing.
type House struct {
	FIASGUID string
	Premises []Premise

	premiseByGUID   map[string]Premise
	premiseByNumber map[string]Premise
	roomByGUID      map[string]Room
	roomByNumber    map[roomKey]Room
}

type roomKey struct {
	premise string
	room    string
}

// NewHouse indexes premises and their rooms. On duplicate identifiers the
// first entry wins.
func NewHouse(fiasGUID string, premises []Premise) *House {
	h := &House{
		FIASGUID:        fiasGUID,
		Premises:        premises,
		premiseByGUID:   make(map[string]Premise, len(premises)),
		premiseByNumber: make(map[string]Premise, len(premises)),
		roomByGUID:      map[string]Room{},
		roomByNumber:    map[roomKey]Room{},
	}
	for _, p := range premises {
		base := p.Base()
		if _, ok := h.premiseByGUID[base.GUID]; !ok && base.GUID != "" {
			h.premiseByGUID[base.GUID] = p
		}
		if _, ok := h.premiseByNumber[base.Number]; !ok && base.Number != "" {
			h.premiseByNumber[base.Number] = p
		}
		res, ok := p.(*ResidentialPremise)
		if !ok {
			continue
		}
		for _, r := range res.Rooms {
			if r.PremiseNumber == "" {
				r.PremiseNumber = base.Number
			}
			if _, ok := h.roomByGUID[r.GUID]; !ok && r.GUID != "" {
				h.roomByGUID[r.GUID] = r
			}
			k := roomKey{premise: r.PremiseNumber, room: r.Number}
			if _, ok := h.roomByNumber[k]; !ok {
				h.roomByNumber[k] = r
			}
		}
	}
	return h
}

// HouseFromExport builds the catalogue from the registry's house export.
func HouseFromExport(export *registry.HouseExportResult) *House {
	if export == nil {
		return NewHouse("", nil)
	}
	premises := make([]Premise, 0, len(export.ResidentialPremises)+len(export.NonResidentialPremises))
	for _, rp := range export.ResidentialPremises {
		p := &ResidentialPremise{PremiseBase: PremiseBase{Number: rp.PremisesNum, GUID: rp.PremisesGUID}}
		for _, lr := range rp.LivingRooms {
			p.Rooms = append(p.Rooms, Room{Number: lr.RoomNumber, GUID: lr.LivingRoomGUID, PremiseNumber: rp.PremisesNum})
		}
		premises = append(premises, p)
	}
	for _, np := range export.NonResidentialPremises {
		premises = append(premises, &NonResidentialPremise{PremiseBase: PremiseBase{Number: np.PremisesNum, GUID: np.PremisesGUID}})
	}
	return NewHouse(export.FIASHouseGUID, premises)
}

func (h *House) PremiseByGUID(guid string) Premise {
	if h == nil || guid == "" {
		return nil
	}
	return h.premiseByGUID[guid]
}

func (h *House) PremiseByNumber(number string) Premise {
	if h == nil || number == "" {
		return nil
	}
	return h.premiseByNumber[number]
}

func (h *House) RoomByGUID(guid string) (Room, bool) {
	if h == nil || guid == "" {
		return Room{}, false
	}
	r, ok := h.roomByGUID[guid]
	return r, ok
}

func (h *House) RoomByNumber(premiseNumber, roomNumber string) (Room, bool) {
	if h == nil {
		return Room{}, false
	}
	r, ok := h.roomByNumber[roomKey{premise: premiseNumber, room: roomNumber}]
	return r, ok
}
