package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"github.com/kursadbilgin/dispatch-console/internal/service"
	"github.com/kursadbilgin/dispatch-console/internal/stats"
)

const defaultPage = 1

// AnalyticsService is the read side over the notification log.
type AnalyticsService interface {
	FetchNotifications(ctx context.Context, params repository.ListParams) (service.NotificationPage, error)
	Dashboard(ctx context.Context, filter repository.RecordFilter) (stats.Dashboard, error)
	Overview(ctx context.Context, filter repository.RecordFilter) (stats.Overview, error)
	StatusDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.StatusShare, error)
	ChannelPerformance(ctx context.Context, filter repository.RecordFilter) ([]stats.GroupMetric, error)
	ProviderComparison(ctx context.Context, filter repository.RecordFilter) ([]stats.ProviderMetric, error)
	RetryDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.RetryBucket, error)
}

type NotificationHandler struct {
	service AnalyticsService
}

func NewNotificationHandler(service AnalyticsService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("analytics service is required")
	}
	return &NotificationHandler{service: service}, nil
}

type notificationResponse struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	QueueID       string     `json:"queueId"`
	Type          string     `json:"type"`
	Channel       string     `json:"channel"`
	Provider      string     `json:"provider"`
	TemplateID    *string    `json:"templateId,omitempty"`
	ContentType   *string    `json:"contentType,omitempty"`
	Recipient     string     `json:"recipient"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PersistedAt   *time.Time `json:"persistedAt,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
	Meta listMeta               `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, err := h.service.FetchNotifications(requestContext(c), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: toNotificationResponses(page.Records),
		Meta: listMeta{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    page.Total,
		},
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", repository.DefaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > repository.MaxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, repository.MaxPageSize)
	}

	filter, err := parseRecordFilter(c)
	if err != nil {
		return repository.ListParams{}, err
	}
	params.RecordFilter = filter

	return params, nil
}

func parseRecordFilter(c *fiber.Ctx) (repository.RecordFilter, error) {
	var filter repository.RecordFilter

	filter.ApplicationID = optionalQuery(c, "applicationId")
	filter.Channel = optionalQuery(c, "channel")
	filter.Provider = optionalQuery(c, "provider")

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.RecordFilter{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.RecordFilter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return repository.RecordFilter{}, fmt.Errorf("%w: from must not be after to", domain.ErrValidation)
	}
	filter.From = from
	filter.To = to

	return filter, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func toNotificationResponses(records []domain.NotificationRecord) []notificationResponse {
	responses := make([]notificationResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toNotificationResponse(&records[i]))
	}
	return responses
}

func toNotificationResponse(n *domain.NotificationRecord) notificationResponse {
	if n == nil {
		return notificationResponse{}
	}

	return notificationResponse{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		QueueID:       n.QueueID,
		Type:          n.Type,
		Channel:       n.Channel,
		Provider:      n.Provider,
		TemplateID:    n.TemplateID,
		ContentType:   n.ContentType,
		Recipient:     n.Recipient,
		Subject:       n.Subject,
		Message:       n.Message,
		Status:        n.Status.String(),
		Attempts:      n.Attempts,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		PersistedAt:   n.PersistedAt,
		ProcessedAt:   n.ProcessedAt,
	}
}
