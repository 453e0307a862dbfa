package accounts

import "time"

// Premise type discriminant values stored in premises.premises_type_id.
const (
	PremisesTypeResidential    = 1
	PremisesTypeNonResidential = 2
)

type Premises struct {
	PremisesID     int64     `gorm:"column:premises_id;primaryKey;autoIncrement" json:"premises_id"`
	HouseID        int64     `gorm:"column:house_id;not null;uniqueIndex:idx_premises_house_num,priority:1" json:"house_id"`
	PremisesNum    string    `gorm:"column:premises_num;type:varchar(32);not null;uniqueIndex:idx_premises_house_num,priority:2" json:"premises_num"`
	PremisesTypeID *int      `gorm:"column:premises_type_id" json:"premises_type_id,omitempty"`
	GUID           string    `gorm:"column:guid;type:varchar(64);not null;default:''" json:"guid"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Premises) TableName() string { return TablePremises }

// PremisesLivingRoom is keyed by (premise, room number): a communal flat holds several rooms,
// each possibly on a different account.
type PremisesLivingRoom struct {
	PremisesLivingRoomID int64     `gorm:"column:premises_living_room_id;primaryKey;autoIncrement" json:"premises_living_room_id"`
	PremisesID           int64     `gorm:"column:premises_id;not null;uniqueIndex:idx_living_room_premise_num,priority:1" json:"premises_id"`
	RoomNum              string    `gorm:"column:room_num;type:varchar(32);not null;default:'';uniqueIndex:idx_living_room_premise_num,priority:2" json:"room_num"`
	GUID                 string    `gorm:"column:guid;type:varchar(64);not null;default:''" json:"guid"`
	CreatedAt            time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PremisesLivingRoom) TableName() string { return TablePremisesLivingRoom }
