package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusOpen, false},
		{TicketStatusResolved, TicketStatusOpen, false},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusOpen, TicketStatusOpen, false},
		{TicketStatusOpen, TicketStatus("CLOSED"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTicket_UpsertShareIsIdempotentPerEmail(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{}

	assert.True(t, ticket.UpsertShare("Bob@Example.com", ShareRoleView))
	assert.False(t, ticket.UpsertShare("bob@example.com", ShareRoleView))
	assert.True(t, ticket.UpsertShare("BOB@example.COM", ShareRoleEdit))

	require.Len(t, ticket.SharedWith, 1)
	assert.Equal(t, ShareEntry{Email: "bob@example.com", Role: ShareRoleEdit}, ticket.SharedWith[0])

	entry, ok := ticket.ShareFor(" BOB@EXAMPLE.COM ")
	require.True(t, ok)
	assert.Equal(t, ShareRoleEdit, entry.Role)
}

func TestTicket_RemoveShare(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{SharedWith: []ShareEntry{
		{Email: "a@example.com", Role: ShareRoleView},
		{Email: "b@example.com", Role: ShareRoleEdit},
	}}
	original := ticket.SharedWith

	assert.True(t, ticket.RemoveShare("A@EXAMPLE.COM"))
	assert.False(t, ticket.RemoveShare("nobody@example.com"))

	require.Len(t, ticket.SharedWith, 1)
	assert.Equal(t, "b@example.com", ticket.SharedWith[0].Email)
	assert.Equal(t, "a@example.com", original[0].Email)
}

func TestShareFor_EmptyEmailNeverMatches(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{SharedWith: []ShareEntry{{Email: "", Role: ShareRoleEdit}}}

	_, ok := ticket.ShareFor("")
	assert.False(t, ok)
}

func TestEnumsValidate(t *testing.T) {
	t.Parallel()

	assert.True(t, TicketPriorityHigh.Valid())
	assert.False(t, TicketPriority("URGENT").Valid())
	assert.True(t, ShareRoleEdit.Valid())
	assert.False(t, ShareRole("comment").Valid())
	assert.True(t, TicketStatusResolved.Valid())
	assert.False(t, TicketStatus("").Valid())
}
