package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers. The value is also the
// name clients receive on the broadcast channel.
type EventType string

const (
	EventTicketCreated  EventType = "ticket:created"
	EventTicketUpdated  EventType = "ticket:updated"
	EventTicketStatus   EventType = "ticket:status"
	EventTicketShared   EventType = "ticket:shared"
	EventTicketUnshared EventType = "ticket:unshared"
	EventTicketAssigned EventType = "ticket:assigned"
	EventTicketDeleted  EventType = "ticket:deleted"
	EventCommentCreated EventType = "comment:created"
	EventCommentUpdated EventType = "comment:updated"
	EventCommentDeleted EventType = "comment:deleted"
	EventNewsCreated    EventType = "news:created"
	EventNewsUpdated    EventType = "news:updated"
	EventNewsDeleted    EventType = "news:deleted"
)

// AllEventTypes lists every event a service may publish.
var AllEventTypes = []EventType{
	EventTicketCreated, EventTicketUpdated, EventTicketStatus, EventTicketShared,
	EventTicketUnshared, EventTicketAssigned, EventTicketDeleted,
	EventCommentCreated, EventCommentUpdated, EventCommentDeleted,
	EventNewsCreated, EventNewsUpdated, EventNewsDeleted,
}

// Event represents a domain event emitted by services after a write commits.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketPayload is the public projection of a ticket carried by ticket events.
type TicketPayload struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	CreatedBy  string                `json:"created_by"`
	AssignedTo *string               `json:"assigned_to,omitempty"`
}

// TicketStatusPayload payload.
type TicketStatusPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketSharePayload payload for share and unshare.
type TicketSharePayload struct {
	Email string           `json:"email"`
	Role  domain.ShareRole `json:"role,omitempty"`
}

// CommentPayload payload.
type CommentPayload struct {
	ID        string   `json:"id"`
	TicketID  string   `json:"ticket_id"`
	ParentID  *string  `json:"parent_id,omitempty"`
	CreatedBy string   `json:"created_by"`
	Preview   string   `json:"preview,omitempty"`
	Removed   []string `json:"removed,omitempty"`
}

// NewsPayload payload.
type NewsPayload struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// NewTicketPayload projects t for broadcasting.
func NewTicketPayload(t *domain.Ticket) TicketPayload {
	return TicketPayload{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		Priority:   t.Priority,
		CreatedBy:  t.CreatedBy,
		AssignedTo: t.AssignedTo,
	}
}
