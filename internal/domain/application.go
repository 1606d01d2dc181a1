package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxApplicationNameLength = 255

// Application is a client of the notification API identified by an
// API token/secret pair.
type Application struct {
	ID        string
	Name      string
	APIToken  string
	APISecret string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials is a freshly issued token/secret pair.
type Credentials struct {
	Token  string
	Secret string
}

func NormalizeApplicationName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: application name is required", ErrValidation)
	}
	if n := len([]rune(trimmed)); n > MaxApplicationNameLength {
		return "", fmt.Errorf("%w: application name exceeds %d characters (got %d)", ErrValidation, MaxApplicationNameLength, n)
	}
	return trimmed, nil
}
