package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"gorm.io/gorm"
)

func createApplicationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_applications",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.ApplicationModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ApplicationModel{})
		},
	}
}
