package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AdminHandler groups administrator endpoints for users and tickets.
type AdminHandler struct {
	users   *service.UserService
	tickets *service.TicketService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(userService *service.UserService, ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{users: userService, tickets: ticketService}
}

// ListUsers GET /admin/users?q=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), user, c.Query("q"), parsePage(c))
	if err != nil {
		return err
	}
	return pageResponse(c, page, userResponse)
}

// SetAdmin POST /admin/users/:id/admin.
func (h *AdminHandler) SetAdmin(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.SetAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsAdmin == nil {
		return apperrors.NewValidationError("is_admin required", nil)
	}

	updated, err := h.users.SetAdmin(c.UserContext(), user, c.Params("id"), *req.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// SearchTickets GET /admin/tickets?q=.
func (h *AdminHandler) SearchTickets(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.Search(c.UserContext(), user, c.Query("q"), parsePage(c))
	if err != nil {
		return err
	}
	return pageResponse(c, page, ticketResponse)
}

// AssignTicket POST /admin/tickets/:id/assign.
func (h *AdminHandler) AssignTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Assign(c.UserContext(), user, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}
