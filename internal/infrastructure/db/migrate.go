package db

import (
	"ppv-marketplace/internal/domain/entities"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// AutoMigrate is for local development; deployments run the goose
// migrations registered by package migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.VideoListing{},
		&entities.EntitlementRecord{},
		&entities.PendingTransaction{},
	)
}

func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(nil)
	return goose.Up(sqlDB, ".")
}
