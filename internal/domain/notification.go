package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle label the delivery backend stores on a notification.
// The set is open: unknown labels are carried through as-is.
type Status string

const (
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusBounced    Status = "bounced"
)

func (s Status) String() string { return string(s) }

// IsKnown reports whether s is one of the five labels the backend emits.
func (s Status) IsKnown() bool {
	switch s {
	case StatusDelivered, StatusFailed, StatusPending, StatusProcessing, StatusBounced:
		return true
	}
	return false
}

func KnownStatuses() []Status {
	return []Status{StatusDelivered, StatusFailed, StatusPending, StatusProcessing, StatusBounced}
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return "", fmt.Errorf("%w: status is required", ErrValidation)
	}
	return st, nil
}

// Common channel labels. Like Status, channels are not a closed set.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
	ChannelInApp = "inapp"
)

// NotificationRecord is one row of the delivery log written by the dispatch
// backend. It is read-only to this service.
type NotificationRecord struct {
	ID            string
	ApplicationID string
	QueueID       string
	Type          string
	Channel       string
	Provider      string
	TemplateID    *string
	ContentType   *string
	Recipient     string
	Subject       string
	Message       string
	Status        Status
	Attempts      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PersistedAt   *time.Time
	ProcessedAt   *time.Time
}

// Validate checks the fields aggregation depends on. It runs where records
// enter the service so malformed rows fail fast instead of skewing rates.
func (n *NotificationRecord) Validate() error {
	if n == nil {
		return NewValidationError("record", "is required")
	}
	if strings.TrimSpace(n.ID) == "" {
		return NewValidationError("id", "is required")
	}
	if strings.TrimSpace(string(n.Status)) == "" {
		return NewValidationError("status", fmt.Sprintf("is required (record %s)", n.ID))
	}
	if n.Attempts < 0 {
		return NewValidationError("attempts", fmt.Sprintf("must be >= 0 (record %s, got %d)", n.ID, n.Attempts))
	}
	return nil
}

// ValidateRecords validates a snapshot and stops at the first bad record.
func ValidateRecords(records []NotificationRecord) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
