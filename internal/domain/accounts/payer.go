package accounts

import (
	"time"

	"gorm.io/datatypes"
)

// Payer stores an individual payer; Info keeps the registry payload verbatim.
type Payer struct {
	PayerID    int64          `gorm:"column:payer_id;primaryKey;autoIncrement" json:"payer_id"`
	Surname    string         `gorm:"column:surname;type:varchar(128);not null;default:'';uniqueIndex:idx_payer_identity,priority:1" json:"surname"`
	FirstName  string         `gorm:"column:first_name;type:varchar(128);not null;default:'';uniqueIndex:idx_payer_identity,priority:2" json:"first_name"`
	Patronymic string         `gorm:"column:patronymic;type:varchar(128);not null;default:'';uniqueIndex:idx_payer_identity,priority:3" json:"patronymic"`
	SNILS      string         `gorm:"column:snils;type:varchar(32);not null;default:'';uniqueIndex:idx_payer_identity,priority:4" json:"snils"`
	Info       datatypes.JSON `gorm:"column:info" json:"info"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Payer) TableName() string { return TablePayer }
