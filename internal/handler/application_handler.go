package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

type ApplicationService interface {
	Create(ctx context.Context, name string) (*domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
	Delete(ctx context.Context, name string) error
	Regenerate(ctx context.Context, name string) (*domain.Application, error)
}

type ApplicationHandler struct {
	service ApplicationService
}

func NewApplicationHandler(service ApplicationService) (*ApplicationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("application service is required")
	}
	return &ApplicationHandler{service: service}, nil
}

type applicationNameRequest struct {
	Name string `json:"name"`
}

type applicationResponse struct {
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"createdAt"`
}

type listApplicationsResponse struct {
	Applications []applicationResponse `json:"applications"`
}

type deleteApplicationResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type credentialsResponse struct {
	Name   string `json:"name"`
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	req, err := parseApplicationName(c)
	if err != nil {
		return err
	}

	app, err := h.service.Create(requestContext(c), req.Name)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toApplicationResponse(app))
}

func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	apps, err := h.service.List(requestContext(c))
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]applicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, toApplicationResponse(&apps[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listApplicationsResponse{Applications: items})
}

func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	req, err := parseApplicationName(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(requestContext(c), req.Name); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(deleteApplicationResponse{
		Name:    strings.TrimSpace(req.Name),
		Message: "application deleted",
	})
}

func (h *ApplicationHandler) RegenerateToken(c *fiber.Ctx) error {
	req, err := parseApplicationName(c)
	if err != nil {
		return err
	}

	app, err := h.service.Regenerate(requestContext(c), req.Name)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(credentialsResponse{
		Name:   app.Name,
		Token:  app.APIToken,
		Secret: app.APISecret,
	})
}

func parseApplicationName(c *fiber.Ctx) (applicationNameRequest, error) {
	var req applicationNameRequest
	if err := c.BodyParser(&req); err != nil {
		return applicationNameRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return req, nil
}

func toApplicationResponse(app *domain.Application) applicationResponse {
	if app == nil {
		return applicationResponse{}
	}
	return applicationResponse{
		Name:      app.Name,
		Token:     app.APIToken,
		Secret:    app.APISecret,
		CreatedAt: app.CreatedAt,
	}
}
