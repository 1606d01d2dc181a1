package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"go.uber.org/zap"
)

const (
	tokenBytes  = 16
	secretBytes = 32
)

type ApplicationService struct {
	apps        repository.ApplicationRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	credentials func() (domain.Credentials, error)
	newID       func() string
	now         func() time.Time
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*ApplicationService, error) {
	if apps == nil {
		return nil, fmt.Errorf("application repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ApplicationService{
		apps:        apps,
		metrics:     metrics,
		logger:      logger,
		credentials: GenerateCredentials,
		newID:       uuid.NewString,
		now:         time.Now,
	}, nil
}

// GenerateCredentials returns a hex token of 16 random bytes and a hex
// secret of 32 random bytes.
func GenerateCredentials() (domain.Credentials, error) {
	token, err := randomHex(tokenBytes)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to generate api token: %w", err)
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to generate api secret: %w", err)
	}
	return domain.Credentials{Token: token, Secret: secret}, nil
}

// Create registers a new application. Every call issues a new identity, so
// retries after an ambiguous failure may hit ErrConflict on the name.
func (s *ApplicationService) Create(ctx context.Context, name string) (app *domain.Application, err error) {
	defer func() { s.metrics.IncApplicationOperation("create", err) }()

	normalized, err := domain.NormalizeApplicationName(name)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app = &domain.Application{
		ID:        s.newID(),
		Name:      normalized,
		APIToken:  creds.Token,
		APISecret: creds.Secret,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: application %q already exists", domain.ErrConflict, normalized)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	observability.WithContextLogger(s.logger, ctx).Info("application created",
		zap.String("applicationId", app.ID),
		zap.String("name", app.Name),
	)
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// Delete removes the named application. Deleting a missing name reports
// ErrNotFound, which callers retrying a delete may treat as done.
func (s *ApplicationService) Delete(ctx context.Context, name string) (err error) {
	defer func() { s.metrics.IncApplicationOperation("delete", err) }()

	normalized, err := domain.NormalizeApplicationName(name)
	if err != nil {
		return err
	}

	if err := s.apps.DeleteByName(ctx, normalized); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: application %q", domain.ErrNotFound, normalized)
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}

	observability.WithContextLogger(s.logger, ctx).Info("application deleted", zap.String("name", normalized))
	return nil
}

// Regenerate replaces the credential pair of the named application and
// returns the application with the new pair.
func (s *ApplicationService) Regenerate(ctx context.Context, name string) (app *domain.Application, err error) {
	defer func() { s.metrics.IncApplicationOperation("regenerate", err) }()

	normalized, err := domain.NormalizeApplicationName(name)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials()
	if err != nil {
		return nil, err
	}

	if err := s.apps.UpdateCredentials(ctx, normalized, creds); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: application %q", domain.ErrNotFound, normalized)
		}
		return nil, fmt.Errorf("failed to regenerate credentials: %w", err)
	}

	app, err = s.apps.GetByName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}

	observability.WithContextLogger(s.logger, ctx).Info("application credentials regenerated",
		zap.String("applicationId", app.ID),
		zap.String("name", app.Name),
	)
	return app, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
