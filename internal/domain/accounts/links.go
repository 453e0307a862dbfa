package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Association edges between an account and its payers, premises and rooms.

type AccountToPayer struct {
	AccountToPayerID int64     `gorm:"column:account_to_payer_id;primaryKey;autoIncrement" json:"account_to_payer_id"`
	AccountDataID    int64     `gorm:"column:account_data_id;not null;index" json:"account_data_id"`
	PayerID          int64     `gorm:"column:payer_id;not null;index" json:"payer_id"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AccountToPayer) TableName() string { return TableAccountToPayer }

type AccountToPremises struct {
	AccountToPremisesID int64               `gorm:"column:account_to_premises_id;primaryKey;autoIncrement" json:"account_to_premises_id"`
	AccountDataID       int64               `gorm:"column:account_data_id;not null;index" json:"account_data_id"`
	PremisesID          int64               `gorm:"column:premises_id;not null;index" json:"premises_id"`
	SharePercent        decimal.NullDecimal `gorm:"column:share_percent;type:numeric(7,4)" json:"share_percent"`
	CreatedAt           time.Time           `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AccountToPremises) TableName() string { return TableAccountToPremises }

type AccountToLivingRoom struct {
	AccountToLivingRoomID int64     `gorm:"column:account_to_living_room_id;primaryKey;autoIncrement" json:"account_to_living_room_id"`
	AccountDataID         int64     `gorm:"column:account_data_id;not null;index" json:"account_data_id"`
	PremisesLivingRoomID  int64     `gorm:"column:premises_living_room_id;not null;index" json:"premises_living_room_id"`
	CreatedAt             time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AccountToLivingRoom) TableName() string { return TableAccountToLivingRoom }

// Models lists every table for AutoMigrate, parents first.
func Models() []any {
	return []any{
		&AccountData{},
		&Payer{},
		&Premises{},
		&PremisesLivingRoom{},
		&AccountToPayer{},
		&AccountToPremises{},
		&AccountToLivingRoom{},
	}
}
