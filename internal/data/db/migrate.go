package db

import (
	"fmt"

	"github.com/yungbote/accountsync/internal/domain/accounts"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(accounts.Models()...); err != nil {
		return fmt.Errorf("automigrate accounts: %w", err)
	}
	return nil
}
