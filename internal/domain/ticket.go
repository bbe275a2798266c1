package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

var statusRank = map[TicketStatus]int{
	TicketStatusOpen:       0,
	TicketStatusInProgress: 1,
	TicketStatusResolved:   2,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo allows forward moves only. A Resolved ticket is never reopened.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// ShareRole is the capability level granted to a collaborator.
type ShareRole string

const (
	ShareRoleView ShareRole = "view"
	ShareRoleEdit ShareRole = "edit"
)

// Valid reports whether r is a known role.
func (r ShareRole) Valid() bool {
	return r == ShareRoleView || r == ShareRoleEdit
}

// ShareEntry grants a non-owner access to a ticket. Email is stored normalized.
type ShareEntry struct {
	Email string
	Role  ShareRole
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID         string
	Title      string
	Content    string
	Image      *string
	Priority   TicketPriority
	Status     TicketStatus
	CreatedBy  string
	AssignedTo *string
	SharedWith []ShareEntry
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ShareFor returns the sharing entry for email, if any.
func (t *Ticket) ShareFor(email string) (ShareEntry, bool) {
	key := NormalizeEmail(email)
	if key == "" {
		return ShareEntry{}, false
	}
	for _, entry := range t.SharedWith {
		if NormalizeEmail(entry.Email) == key {
			return entry, true
		}
	}
	return ShareEntry{}, false
}

// UpsertShare sets the role for email, replacing an existing entry for the
// same address. It reports whether the list changed.
func (t *Ticket) UpsertShare(email string, role ShareRole) bool {
	key := NormalizeEmail(email)
	for i, entry := range t.SharedWith {
		if NormalizeEmail(entry.Email) == key {
			if entry.Role == role && entry.Email == key {
				return false
			}
			t.SharedWith[i] = ShareEntry{Email: key, Role: role}
			return true
		}
	}
	t.SharedWith = append(t.SharedWith, ShareEntry{Email: key, Role: role})
	return true
}

// RemoveShare drops every entry matching email and reports whether one existed.
func (t *Ticket) RemoveShare(email string) bool {
	key := NormalizeEmail(email)
	kept := make([]ShareEntry, 0, len(t.SharedWith))
	removed := false
	for _, entry := range t.SharedWith {
		if NormalizeEmail(entry.Email) == key {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	t.SharedWith = kept
	return removed
}
