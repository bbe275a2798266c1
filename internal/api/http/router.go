package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	News           *handlers.NewsHandler
	Admin          *handlers.AdminHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())

	protected.Get("/me", cfg.Users.Me)
	protected.Patch("/me", cfg.Users.UpdateMe)
	protected.Get("/me/activities", cfg.Users.Activities)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	protected.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
	protected.Post("/tickets/:id/status", cfg.Tickets.ChangeStatus)
	protected.Post("/tickets/:id/share", cfg.Tickets.Share)
	protected.Delete("/tickets/:id/share/:email", cfg.Tickets.Unshare)
	protected.Get("/tickets/:id/comments", cfg.Comments.ListComments)
	protected.Post("/tickets/:id/comments", cfg.Comments.AddComment)

	protected.Patch("/comments/:id", cfg.Comments.EditComment)
	protected.Delete("/comments/:id", cfg.Comments.DeleteComment)

	protected.Get("/news", cfg.News.ListNews)
	protected.Get("/news/:id", cfg.News.GetNews)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/:id/admin", cfg.Admin.SetAdmin)
	admin.Get("/tickets", cfg.Admin.SearchTickets)
	admin.Post("/tickets/:id/assign", cfg.Admin.AssignTicket)
	admin.Post("/news", cfg.News.CreateNews)
	admin.Patch("/news/:id", cfg.News.UpdateNews)
	admin.Delete("/news/:id", cfg.News.DeleteNews)
}
