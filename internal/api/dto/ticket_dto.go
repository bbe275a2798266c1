package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title    string                `json:"title"`
	Content  string                `json:"content"`
	Priority domain.TicketPriority `json:"priority"`
	Image    *string               `json:"image"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title      *string                `json:"title"`
	Content    *string                `json:"content"`
	Priority   *domain.TicketPriority `json:"priority"`
	Image      *string                `json:"image"`
	ClearImage bool                   `json:"clear_image"`
}

// StatusRequest payload.
type StatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// ShareRequest payload.
type ShareRequest struct {
	Email string           `json:"email"`
	Role  domain.ShareRole `json:"role"`
}

// AssignRequest payload. A null assignee clears the assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// ShareResponse is one sharing entry.
type ShareResponse struct {
	Email string           `json:"email"`
	Role  domain.ShareRole `json:"role"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Content    string                `json:"content"`
	Image      *string               `json:"image"`
	Priority   domain.TicketPriority `json:"priority"`
	Status     domain.TicketStatus   `json:"status"`
	CreatedBy  string                `json:"created_by"`
	AssignedTo *string               `json:"assigned_to"`
	SharedWith []ShareResponse       `json:"shared_with"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}
