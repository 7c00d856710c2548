package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/rewear-service/internal/api/http/handlers"
	"github.com/spec-kit/rewear-service/internal/auth"
	"github.com/spec-kit/rewear-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	Swaps          *handlers.SwapsHandler
	Redemptions    *handlers.RedemptionsHandler
	Admin          *handlers.AdminHandler
	Upload         *handlers.UploadHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimit      fiber.Handler
	Metrics        *observability.Metrics
	// MediaRoot and MediaPath serve stored images; empty MediaRoot skips it.
	MediaRoot string
	MediaPath string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	limit := cfg.RateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	authed := cfg.AuthMiddleware.Handle

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	if cfg.MediaRoot != "" && cfg.MediaPath != "" {
		app.Static(cfg.MediaPath, cfg.MediaRoot)
	}

	authGroup := app.Group("/auth", limit)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/external", cfg.Auth.External)

	app.Get("/users/me", authed, cfg.Users.Me)
	app.Get("/users/items", cfg.Users.Items)

	app.Get("/items", cfg.Items.List)
	app.Get("/items/:id", cfg.Items.Get)
	app.Post("/items", limit, authed, cfg.Items.Create)

	swaps := app.Group("/swaps", authed)
	swaps.Get("/", cfg.Swaps.List)
	swaps.Get("/:id", cfg.Swaps.Get)
	swaps.Post("/", limit, cfg.Swaps.Propose)
	swaps.Put("/", limit, cfg.Swaps.Decide)

	redemptions := app.Group("/redemptions", authed)
	redemptions.Get("/", cfg.Redemptions.List)
	redemptions.Post("/", limit, cfg.Redemptions.Redeem)

	admin := app.Group("/admin", authed, auth.RequireAdmin())
	admin.Get("/items", cfg.Admin.ListItems)
	admin.Put("/items", limit, cfg.Admin.ModerateItem)
	admin.Delete("/items", limit, cfg.Admin.DeleteItem)
	admin.Get("/items/:id/history", cfg.Admin.History)

	app.Post("/upload", limit, authed, cfg.Upload.Upload)
}
