package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/http/handlers"
	"github.com/spec-kit/assistance-service/internal/auth"
	"github.com/spec-kit/assistance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Companies      *handlers.CompaniesHandler
	Providers      *handlers.ProvidersHandler
	Vehicles       *handlers.VehiclesHandler
	Resources      *handlers.ResourcesHandler
	Plans          *handlers.PlansHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Users.ChangePassword)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Post("", auth.RequireRoles(domain.RoleClientAdmin, domain.RoleClientOperator, domain.RoleSuperAdmin), cfg.Requests.Create)
	requests.Get("", auth.RequireAuthenticated(), cfg.Requests.List)
	requests.Get("/:id", auth.RequireAuthenticated(), cfg.Requests.Get)
	requests.Post("/:id/assign", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Requests.Assign)
	requests.Get("/:id/resources", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Requests.CompatibleResources)
	requests.Patch("/:id/status", auth.RequireRoles(domain.RoleProviderAdmin, domain.RoleProviderOperator, domain.RoleSuperAdmin), cfg.Requests.ChangeState)
	requests.Post("/:id/finalize", auth.RequireRoles(domain.RoleProviderAdmin, domain.RoleProviderOperator), cfg.Requests.Finalize)
	requests.Post("/:id/cancel", auth.RequireRoles(domain.RoleClientAdmin, domain.RoleClientOperator, domain.RoleSuperAdmin), cfg.Requests.Cancel)
	requests.Post("/:id/rate", auth.RequireRoles(domain.RoleClientAdmin), cfg.Requests.Rate)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	users.Patch("/me/availability", auth.RequireRoles(domain.RoleProviderOperator), cfg.Users.SetAvailability)
	users.Post("/me/location", auth.RequireRoles(domain.RoleProviderOperator), cfg.Users.ReportLocation)
	users.Post("", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Users.Create)
	users.Get("", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Users.List)
	users.Get("/:id", auth.RequireAuthenticated(), cfg.Users.Get)
	users.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Users.Update)
	users.Get("/:id/location", auth.RequireAuthenticated(), cfg.Users.Location)

	companies := app.Group("/companies", cfg.AuthMiddleware.Handle)
	companies.Post("", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Companies.Create)
	companies.Get("", auth.RequireAuthenticated(), cfg.Companies.List)
	companies.Get("/:id", auth.RequireAuthenticated(), cfg.Companies.Get)
	companies.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleClientAdmin), cfg.Companies.Update)
	companies.Delete("/:id", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Companies.Delete)

	providers := app.Group("/providers", cfg.AuthMiddleware.Handle)
	providers.Post("", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Providers.Create)
	providers.Get("", auth.RequireAuthenticated(), cfg.Providers.List)
	providers.Get("/:id", auth.RequireAuthenticated(), cfg.Providers.Get)
	providers.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleProviderAdmin), cfg.Providers.Update)
	providers.Delete("/:id", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Providers.Delete)
	providers.Get("/:id/stats", auth.RequireAuthenticated(), cfg.Providers.Stats)
	providers.Get("/:id/resources", auth.RequireAuthenticated(), cfg.Resources.ListByProvider)

	vehicles := app.Group("/vehicles", cfg.AuthMiddleware.Handle)
	vehicles.Post("", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleClientAdmin), cfg.Vehicles.Create)
	vehicles.Get("", auth.RequireAuthenticated(), cfg.Vehicles.List)
	vehicles.Get("/:id", auth.RequireAuthenticated(), cfg.Vehicles.Get)
	vehicles.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleClientAdmin), cfg.Vehicles.Update)

	resources := app.Group("/resources", cfg.AuthMiddleware.Handle)
	resources.Post("", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleProviderAdmin), cfg.Resources.Create)
	resources.Get("/:id", auth.RequireAuthenticated(), cfg.Resources.Get)
	resources.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleProviderAdmin), cfg.Resources.Update)
	resources.Delete("/:id", auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleProviderAdmin), cfg.Resources.Deactivate)

	plans := app.Group("/plans", cfg.AuthMiddleware.Handle)
	plans.Post("", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Plans.Create)
	plans.Get("", auth.RequireAuthenticated(), cfg.Plans.List)
	plans.Get("/:id", auth.RequireAuthenticated(), cfg.Plans.Get)
	plans.Put("/:id", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Plans.Update)
	plans.Delete("/:id", auth.RequireRoles(domain.RoleSuperAdmin), cfg.Plans.Delete)
}
