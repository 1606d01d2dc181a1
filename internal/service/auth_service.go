package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
	"github.com/kursadbilgin/dispatch-console/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const AdminTokenTTL = 24 * time.Hour

// AdminClaims is the payload of the admin session token.
type AdminClaims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Username     string
	PasswordHash string
	Secret       string
}

// Session is an issued admin token.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type AuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	limiter      ratelimit.RateLimiter
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService validates the single admin account. limiter may be nil to
// disable login throttling.
func NewAuthService(
	cfg AuthConfig,
	limiter ratelimit.RateLimiter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*AuthService, error) {
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		username:     username,
		passwordHash: []byte(cfg.PasswordHash),
		secret:       []byte(cfg.Secret),
		limiter:      limiter,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Login checks the admin credentials and issues a signed session token.
// clientKey identifies the caller for throttling, typically the remote IP.
func (s *AuthService) Login(ctx context.Context, clientKey, username, password string) (*Session, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	if s.limiter != nil && strings.TrimSpace(clientKey) != "" {
		allowed, err := s.limiter.Allow(ctx, clientKey)
		if err != nil {
			// Fail open while redis is unavailable.
			logger.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.metrics.IncLoginAttempt("rate_limited")
			return nil, fmt.Errorf("%w: too many login attempts", domain.ErrRateLimited)
		}
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !usernameMatch || passwordErr != nil {
		s.metrics.IncLoginAttempt("failure")
		logger.Info("admin login rejected", zap.String("clientKey", clientKey))
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	now := s.now().UTC()
	expiresAt := now.Add(AdminTokenTTL)
	claims := AdminClaims{
		Username: s.username,
		Admin:    true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin token: %w", err)
	}

	s.metrics.IncLoginAttempt("success")
	logger.Info("admin logged in", zap.String("username", s.username))
	return &Session{Token: token, Username: s.username, ExpiresAt: expiresAt}, nil
}

// Verify parses an admin token and returns its claims. Any defect in the
// token is reported as ErrUnauthorized.
func (s *AuthService) Verify(token string) (*AdminClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing admin token", domain.ErrUnauthorized)
	}

	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: admin token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid admin token", domain.ErrUnauthorized)
	}
	if !parsed.Valid || !claims.Admin || claims.Username != s.username {
		return nil, fmt.Errorf("%w: invalid admin token", domain.ErrUnauthorized)
	}

	return claims, nil
}
