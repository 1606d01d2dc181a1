package repository

import (
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

// NotificationModel is the persistence model for the notifications table.
// The delivery backend owns the writes; this service only reads it.
type NotificationModel struct {
	ID            string        `gorm:"type:varchar(36);primaryKey"`
	ApplicationID string        `gorm:"type:varchar(36);index"`
	QueueID       string        `gorm:"type:varchar(100);uniqueIndex"`
	Type          string        `gorm:"type:text"`
	Channel       string        `gorm:"type:text"`
	Provider      string        `gorm:"type:text"`
	TemplateID    *string       `gorm:"type:text"`
	ContentType   *string       `gorm:"column:message_content_type;type:text"`
	Recipient     string        `gorm:"type:text"`
	Subject       string        `gorm:"type:text"`
	Message       string        `gorm:"type:text"`
	Status        domain.Status `gorm:"type:text"`
	Attempts      int           `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PersistedAt   *time.Time `gorm:"type:timestamptz"`
	ProcessedAt   *time.Time `gorm:"type:timestamptz"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// ApplicationModel is the persistence model for the applications table.
type ApplicationModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Name      string `gorm:"type:varchar(255);uniqueIndex;not null"`
	APIToken  string `gorm:"type:varchar(255);uniqueIndex;not null"`
	APISecret string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ApplicationModel) TableName() string {
	return "applications"
}

func notificationModelToDomain(m *NotificationModel) *domain.NotificationRecord {
	if m == nil {
		return nil
	}

	return &domain.NotificationRecord{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		QueueID:       m.QueueID,
		Type:          m.Type,
		Channel:       m.Channel,
		Provider:      m.Provider,
		TemplateID:    m.TemplateID,
		ContentType:   m.ContentType,
		Recipient:     m.Recipient,
		Subject:       m.Subject,
		Message:       m.Message,
		Status:        m.Status,
		Attempts:      m.Attempts,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		PersistedAt:   m.PersistedAt,
		ProcessedAt:   m.ProcessedAt,
	}
}

func notificationModelsToDomain(models []NotificationModel) []domain.NotificationRecord {
	records := make([]domain.NotificationRecord, 0, len(models))
	for i := range models {
		records = append(records, *notificationModelToDomain(&models[i]))
	}
	return records
}

func applicationModelFromDomain(a *domain.Application) *ApplicationModel {
	if a == nil {
		return nil
	}

	return &ApplicationModel{
		ID:        a.ID,
		Name:      a.Name,
		APIToken:  a.APIToken,
		APISecret: a.APISecret,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func applicationModelToDomain(m *ApplicationModel) *domain.Application {
	if m == nil {
		return nil
	}

	return &domain.Application{
		ID:        m.ID,
		Name:      m.Name,
		APIToken:  m.APIToken,
		APISecret: m.APISecret,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
