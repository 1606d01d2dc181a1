package adminclient

import (
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

type notificationPage struct {
	Data []notificationPayload `json:"data"`
	Meta pageMeta              `json:"meta"`
}

type pageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type notificationPayload struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	QueueID       string     `json:"queueId"`
	Type          string     `json:"type"`
	Channel       string     `json:"channel"`
	Provider      string     `json:"provider"`
	TemplateID    *string    `json:"templateId"`
	ContentType   *string    `json:"contentType"`
	Recipient     string     `json:"recipient"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PersistedAt   *time.Time `json:"persistedAt"`
	ProcessedAt   *time.Time `json:"processedAt"`
}

func (p notificationPayload) toDomain() domain.NotificationRecord {
	return domain.NotificationRecord{
		ID:            p.ID,
		ApplicationID: p.ApplicationID,
		QueueID:       p.QueueID,
		Type:          p.Type,
		Channel:       p.Channel,
		Provider:      p.Provider,
		TemplateID:    p.TemplateID,
		ContentType:   p.ContentType,
		Recipient:     p.Recipient,
		Subject:       p.Subject,
		Message:       p.Message,
		Status:        domain.Status(p.Status),
		Attempts:      p.Attempts,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		PersistedAt:   p.PersistedAt,
		ProcessedAt:   p.ProcessedAt,
	}
}
