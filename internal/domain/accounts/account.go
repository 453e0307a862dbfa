package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountData is the stored billing account.
type AccountData struct {
	AccountDataID       int64               `gorm:"column:account_data_id;primaryKey;autoIncrement" json:"account_data_id"`
	Number              string              `gorm:"column:number;type:varchar(64);not null;uniqueIndex" json:"number"`
	GUID                string              `gorm:"column:guid;type:varchar(64);not null;default:'';index" json:"guid"`
	HouseID             int64               `gorm:"column:house_id;not null;default:0;index" json:"house_id"`
	CreationDate        *time.Time          `gorm:"column:creation_date" json:"creation_date,omitempty"`
	TotalSquare         decimal.NullDecimal `gorm:"column:total_square;type:numeric(14,4)" json:"total_square"`
	LivingSquare        decimal.NullDecimal `gorm:"column:living_square;type:numeric(14,4)" json:"living_square"`
	HeatedSquare        decimal.NullDecimal `gorm:"column:heated_square;type:numeric(14,4)" json:"heated_square"`
	LivingPersonsNumber *int                `gorm:"column:living_persons_number" json:"living_persons_number,omitempty"`
	AccountType         int                 `gorm:"column:account_type;not null;default:0" json:"account_type"`
	CreatedAt           time.Time           `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AccountData) TableName() string { return TableAccountData }
