package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transfer-service/internal/api/http/handlers"
	"github.com/spec-kit/transfer-service/internal/auth"
	"github.com/spec-kit/transfer-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Employees      *handlers.EmployeesHandler
	Transfers      *handlers.TransfersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Employees.Login)
	app.Post("/employees/bootstrap", cfg.Employees.Bootstrap)

	employees := app.Group("/employees", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	employees.Post("", cfg.Employees.Register)
	employees.Get("", cfg.Employees.List)

	transfers := app.Group("/transfers", cfg.AuthMiddleware.Handle)
	transfers.Post("", auth.RequireRole(domain.RoleRegistrar), cfg.Transfers.Create)
	transfers.Get("", auth.RequireAnyRole(), cfg.Transfers.List)
	transfers.Post("/:id/deliver", auth.RequireRole(domain.RoleConfirmer), cfg.Transfers.Deliver)
	transfers.Post("/:id/edits", auth.RequireRole(domain.RoleRegistrar), cfg.Transfers.Edit)
	transfers.Get("/:id/history", auth.RequireRole(domain.RoleAdministrator, domain.RoleRegistrar), cfg.Transfers.History)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	reports.Get("/inventory", cfg.Reports.Inventory)
	reports.Get("/profit", cfg.Reports.Profit)
}
