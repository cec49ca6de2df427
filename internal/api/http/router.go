package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rank-service/internal/api/http/handlers"
	"github.com/spec-kit/rank-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Points         *handlers.PointsHandler
	Ranks          *handlers.RanksHandler
	Staff          *handlers.StaffHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Read-only player queries are open;
// everything that mutates state sits behind the admin token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	app.Get("/ranks", cfg.Ranks.List)
	app.Get("/players/:name/points", cfg.Points.GetPoints)
	app.Get("/players/:name/rank", cfg.Points.RankInfo)

	admin := app.Group("", cfg.AuthMiddleware.Handle)
	admin.Post("/players/:name/points/add", cfg.Points.AddPoints)
	admin.Put("/players/:name/points", cfg.Points.SetPoints)
	admin.Post("/players/:name/promote", cfg.Points.Promote)
	admin.Post("/ranks/reload", cfg.Ranks.Reload)

	admin.Get("/stafflist", cfg.Staff.List)
	admin.Post("/stafflist", cfg.Staff.Add)
	admin.Delete("/stafflist/:uuid", cfg.Staff.Remove)

	app.Post("/sessions/login", cfg.Sessions.Login)
	app.Post("/sessions/logout", cfg.Sessions.Logout)
	admin.Get("/sessions", cfg.Sessions.List)
}
