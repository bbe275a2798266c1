package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ActivityResponse is one activity log entry.
type ActivityResponse struct {
	ID        string              `json:"id"`
	Type      domain.ActivityType `json:"type"`
	Message   string              `json:"message"`
	TicketID  *string             `json:"ticket_id"`
	CreatedAt time.Time           `json:"created_at"`
}

// PageMeta accompanies every paginated list.
type PageMeta struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}
