package db

import (
	"fmt"

	"github.com/voicecast/voicecast/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.CallLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
