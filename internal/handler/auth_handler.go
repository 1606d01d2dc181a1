package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/service"
)

type AuthService interface {
	TokenVerifier
	Login(ctx context.Context, clientKey, username, password string) (*service.Session, error)
}

type AuthHandler struct {
	service      AuthService
	secureCookie bool
	now          func() time.Time
}

func NewAuthHandler(service AuthService, secureCookie bool) (*AuthHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	return &AuthHandler{service: service, secureCookie: secureCookie, now: time.Now}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return toHTTPError(fmt.Errorf("%w: username and password are required", domain.ErrValidation))
	}

	session, err := h.service.Login(requestContext(c), c.IP(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AdminCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(loginResponse{
		Username:  session.Username,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookieName,
		Value:    "",
		Path:     "/",
		Expires:  h.now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "logged out",
	})
}
