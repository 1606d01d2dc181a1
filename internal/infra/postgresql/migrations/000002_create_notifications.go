package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"gorm.io/gorm"
)

func createNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_notifications_created_id ON notifications (created_at, id)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_channel_created ON notifications (channel, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_provider_created ON notifications (provider, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_updated_at ON notifications (updated_at)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.NotificationModel{})
		},
	}
}
