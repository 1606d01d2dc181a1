package handler

import "github.com/gofiber/fiber/v2"

type Services struct {
	Auth         AuthService
	Applications ApplicationService
	Analytics    AnalyticsService
	SecureCookie bool
}

// RegisterAdminRoutes mounts the admin API. The login and logout routes are
// registered ahead of the guarded group so they stay public.
func RegisterAdminRoutes(router fiber.Router, svcs Services) error {
	auth, err := NewAuthHandler(svcs.Auth, svcs.SecureCookie)
	if err != nil {
		return err
	}
	apps, err := NewApplicationHandler(svcs.Applications)
	if err != nil {
		return err
	}
	notifications, err := NewNotificationHandler(svcs.Analytics)
	if err != nil {
		return err
	}

	router.Post("/admin/auth/login", auth.Login)
	router.Post("/admin/logout", auth.Logout)

	admin := router.Group("/admin", RequireAdmin(svcs.Auth))
	admin.Post("/create-application", apps.CreateApplication)
	admin.Get("/applications", apps.ListApplications)
	admin.Put("/delete-application", apps.DeleteApplication)
	admin.Put("/regenerate-token", apps.RegenerateToken)

	admin.Get("/notifications", notifications.ListNotifications)
	admin.Get("/stats", notifications.Dashboard)
	admin.Get("/stats/overview", notifications.Overview)
	admin.Get("/stats/status", notifications.StatusDistribution)
	admin.Get("/stats/channels", notifications.ChannelPerformance)
	admin.Get("/stats/providers", notifications.ProviderComparison)
	admin.Get("/stats/retries", notifications.RetryDistribution)

	return nil
}
