package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
)

func (h *NotificationHandler) Dashboard(c *fiber.Ctx) error {
	return respondView(c, h.service.Dashboard)
}

func (h *NotificationHandler) Overview(c *fiber.Ctx) error {
	return respondView(c, h.service.Overview)
}

func (h *NotificationHandler) StatusDistribution(c *fiber.Ctx) error {
	return respondView(c, h.service.StatusDistribution)
}

func (h *NotificationHandler) ChannelPerformance(c *fiber.Ctx) error {
	return respondView(c, h.service.ChannelPerformance)
}

func (h *NotificationHandler) ProviderComparison(c *fiber.Ctx) error {
	return respondView(c, h.service.ProviderComparison)
}

func (h *NotificationHandler) RetryDistribution(c *fiber.Ctx) error {
	return respondView(c, h.service.RetryDistribution)
}

func respondView[T any](c *fiber.Ctx, view func(context.Context, repository.RecordFilter) (T, error)) error {
	filter, err := parseRecordFilter(c)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := view(requestContext(c), filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
