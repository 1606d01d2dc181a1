package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
	"github.com/kursadbilgin/dispatch-console/internal/service"
)

const (
	AdminCookieName = "admin_token"

	localAdminUsername = "adminUsername"
)

type TokenVerifier interface {
	Verify(token string) (*service.AdminClaims, error)
}

// CorrelationIDMiddleware propagates X-Request-ID, generating one when the
// caller sent none, into the response and the request context.
func CorrelationIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := observability.NewCorrelationID(c.Get(fiber.HeaderXRequestID))
		c.Set(fiber.HeaderXRequestID, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}

// RequireAdmin accepts the admin_token cookie or an Authorization bearer
// token.
func RequireAdmin(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := adminToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, domain.ErrUnauthorized.Error()+": missing admin token")
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			return toHTTPError(err)
		}

		c.Locals(localAdminUsername, claims.Username)
		return c.Next()
	}
}

// adminToken prefers an explicit bearer header over the session cookie.
func adminToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		if token := strings.TrimSpace(auth[len("bearer "):]); token != "" {
			return token
		}
	}

	return strings.TrimSpace(c.Cookies(AdminCookieName))
}

func requestContext(c *fiber.Ctx) context.Context {
	return c.UserContext()
}
