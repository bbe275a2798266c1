// Package access decides what a user may do with a ticket.
//
// Every ticket and comment operation consults this package instead of
// repeating ownership and sharing checks.
package access

import (
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Capability is a single action evaluated per user per ticket.
type Capability string

const (
	CapabilityView    Capability = "view"
	CapabilityComment Capability = "comment"
	CapabilityEdit    Capability = "edit"
	CapabilityDelete  Capability = "delete"
)

var allCapabilities = []Capability{CapabilityView, CapabilityComment, CapabilityEdit, CapabilityDelete}

// roleGrants maps sharing roles to capabilities. Commenting is part of view
// access; there is no separate comment-only role.
var roleGrants = map[domain.ShareRole][]Capability{
	domain.ShareRoleEdit: {CapabilityView, CapabilityComment, CapabilityEdit},
	domain.ShareRoleView: {CapabilityView, CapabilityComment},
}

// Grants returns the capabilities user holds on ticket before the
// resolved-ticket rule is applied.
func Grants(user *domain.User, ticket *domain.Ticket) []Capability {
	if user == nil || ticket == nil || user.ID == "" {
		return nil
	}
	if user.IsAdmin || ticket.CreatedBy == user.ID {
		return allCapabilities
	}
	entry, ok := ticket.ShareFor(user.Email)
	if !ok {
		return nil
	}
	return roleGrants[entry.Role]
}

func holds(grants []Capability, want Capability) bool {
	for _, c := range grants {
		if c == want {
			return true
		}
	}
	return false
}

// CanAccess reports whether user may perform capability on ticket.
// Resolved tickets deny edit to everyone, admins and owners included.
func CanAccess(user *domain.User, ticket *domain.Ticket, capability Capability) bool {
	if capability == CapabilityEdit && ticket != nil && ticket.Status == domain.TicketStatusResolved {
		return false
	}
	return holds(Grants(user, ticket), capability)
}

// Authorize is CanAccess with a taxonomy error describing the denial.
// A missing identity is reported before anything else is evaluated.
func Authorize(user *domain.User, ticket *domain.Ticket, capability Capability) error {
	if user == nil || user.ID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", nil)
	}
	if CanAccess(user, ticket, capability) {
		return nil
	}
	grants := Grants(user, ticket)
	if capability == CapabilityEdit && ticket.Status == domain.TicketStatusResolved && holds(grants, CapabilityView) {
		return apperrors.NewConflict("resolved tickets cannot be edited", map[string]any{"ticket_id": ticket.ID})
	}
	return apperrors.NewForbidden("missing " + string(capability) + " access to ticket")
}
