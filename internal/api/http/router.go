package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-track/internal/api/http/handlers"
	"github.com/spec-kit/civic-track/internal/auth"
	"github.com/spec-kit/civic-track/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *auth.RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	users := app.Group("/users")
	if cfg.RateLimiter != nil {
		users.Use(cfg.RateLimiter.Handle)
	}
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	users.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Post("/", cfg.Issues.Create)
	issues.Get("/", cfg.Issues.ListNearby)
	issues.Patch("/:id/status", auth.RequireAdmin(), cfg.Admin.UpdateStatus)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/issues", cfg.Admin.ListAll)
}
