package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestTicketCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)

	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{
		Title:   "  Printer on fire ",
		Content: "smoke",
		Image:   ptr(" uploads/fire.png "),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "Printer on fire", ticket.Title)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "owner", ticket.CreatedBy)
	assert.Equal(t, "uploads/fire.png", *ticket.Image)

	stored, err := f.repos.Users.GetByID(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.ID}, stored.TicketIDs)

	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.events.types())
	acts := f.activities(t, "owner")
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActivityTicketCreated, acts[0].Type)
	assert.Equal(t, ticket.ID, *acts[0].TicketID)
}

func TestTicketCreate_Rejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)

	_, err := f.tickets.Create(ctx, nil, TicketCreateInput{Title: "t", Content: "c"})
	requireCode(t, err, apperrors.CodeAuthenticationRequired)

	_, err = f.tickets.Create(ctx, owner, TicketCreateInput{Title: " ", Content: "c"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.Create(ctx, owner, TicketCreateInput{Title: "t", Content: "c", Priority: "URGENT"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.Create(ctx, &domain.User{ID: "ghost", Email: "ghost@example.com"}, TicketCreateInput{Title: "t", Content: "c"})
	requireCode(t, err, apperrors.CodeNotFound)
	page, err := f.tickets.Search(ctx, &domain.User{ID: "root", IsAdmin: true}, "", PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items, "ticket insert must roll back when the owner is missing")
}

func TestTicketGet_Access(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	viewer := f.user(t, "viewer", "Viewer@Example.com", false)
	stranger := f.user(t, "stranger", "stranger@example.com", false)
	admin := f.user(t, "admin", "admin@example.com", true)
	ticket := f.ticket(t, owner, "VPN")

	_, err := f.tickets.Share(ctx, owner, ticket.ID, "VIEWER@example.com", domain.ShareRoleView)
	require.NoError(t, err)

	for _, u := range []*domain.User{owner, viewer, admin} {
		_, err := f.tickets.Get(ctx, u, ticket.ID)
		require.NoError(t, err, u.ID)
	}

	_, err = f.tickets.Get(ctx, stranger, ticket.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.tickets.Get(ctx, owner, "missing")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.tickets.Get(ctx, nil, "missing")
	requireCode(t, err, apperrors.CodeAuthenticationRequired)
}

func TestTicketUpdateFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	editor := f.user(t, "editor", "editor@example.com", false)
	viewer := f.user(t, "viewer", "viewer@example.com", false)
	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "Old", Content: "c", Image: ptr("old.png")})
	require.NoError(t, err)
	_, err = f.tickets.Share(ctx, owner, ticket.ID, editor.Email, domain.ShareRoleEdit)
	require.NoError(t, err)
	_, err = f.tickets.Share(ctx, owner, ticket.ID, viewer.Email, domain.ShareRoleView)
	require.NoError(t, err)

	updated, err := f.tickets.UpdateFields(ctx, editor, ticket.ID, TicketUpdateInput{
		Title:    ptr("New"),
		Priority: ptr(domain.TicketPriorityHigh),
		Image:    ptr("new.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, "owner", updated.CreatedBy)
	assert.Equal(t, []string{"old.png"}, f.images.deleted)

	_, err = f.tickets.UpdateFields(ctx, viewer, ticket.ID, TicketUpdateInput{Title: ptr("x")})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.tickets.UpdateFields(ctx, owner, ticket.ID, TicketUpdateInput{})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.UpdateFields(ctx, owner, ticket.ID, TicketUpdateInput{Content: ptr("  ")})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestTicketUpdateFields_ResolvedIsImmutableForEveryone(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	editor := f.user(t, "editor", "editor@example.com", false)
	admin := f.user(t, "admin", "admin@example.com", true)
	ticket := f.ticket(t, owner, "Done soon")
	_, err := f.tickets.Share(ctx, owner, ticket.ID, editor.Email, domain.ShareRoleEdit)
	require.NoError(t, err)
	_, err = f.tickets.TransitionStatus(ctx, owner, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	for _, u := range []*domain.User{owner, editor, admin} {
		_, err := f.tickets.UpdateFields(ctx, u, ticket.ID, TicketUpdateInput{Title: ptr("reopen")})
		requireCode(t, err, apperrors.CodeConflict)
	}
}

func TestTicketTransitionStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []domain.TicketStatus
		next domain.TicketStatus
		code string
	}{
		{name: "open to in progress", next: domain.TicketStatusInProgress},
		{name: "open to resolved", next: domain.TicketStatusResolved},
		{name: "same status is a no-op", next: domain.TicketStatusOpen},
		{name: "backwards", path: []domain.TicketStatus{domain.TicketStatusInProgress}, next: domain.TicketStatusOpen, code: apperrors.CodeConflict},
		{name: "resolved is final", path: []domain.TicketStatus{domain.TicketStatusResolved}, next: domain.TicketStatusInProgress, code: apperrors.CodeConflict},
		{name: "unknown status", next: "CLOSED", code: apperrors.CodeValidationFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()
			owner := f.user(t, "owner", "owner@example.com", false)
			ticket := f.ticket(t, owner, "Lifecycle")
			for _, step := range tt.path {
				_, err := f.tickets.TransitionStatus(ctx, owner, ticket.ID, step)
				require.NoError(t, err)
			}

			got, err := f.tickets.TransitionStatus(ctx, owner, ticket.ID, tt.next)
			if tt.code != "" {
				requireCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, got.Status)
		})
	}
}

func TestTicketTransitionStatus_NoopPublishesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket := f.ticket(t, owner, "Quiet")

	_, err := f.tickets.TransitionStatus(context.Background(), owner, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.events.types())
}

func TestTicketShare_IdempotentUpsert(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket := f.ticket(t, owner, "Shared")

	_, err := f.tickets.Share(ctx, owner, ticket.ID, "Pat@Example.com", domain.ShareRoleView)
	require.NoError(t, err)
	_, err = f.tickets.Share(ctx, owner, ticket.ID, "pat@example.com", domain.ShareRoleView)
	require.NoError(t, err)
	got, err := f.tickets.Share(ctx, owner, ticket.ID, "PAT@EXAMPLE.COM", domain.ShareRoleEdit)
	require.NoError(t, err)

	assert.Equal(t, []domain.ShareEntry{{Email: "pat@example.com", Role: domain.ShareRoleEdit}}, got.SharedWith)

	shared := 0
	for _, e := range f.events.types() {
		if e == events.EventTicketShared {
			shared++
		}
	}
	assert.Equal(t, 2, shared, "repeating an identical share changes nothing")
}

func TestTicketShare_Rejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	viewer := f.user(t, "viewer", "viewer@example.com", false)
	ticket := f.ticket(t, owner, "Shared")
	_, err := f.tickets.Share(ctx, owner, ticket.ID, viewer.Email, domain.ShareRoleView)
	require.NoError(t, err)

	_, err = f.tickets.Share(ctx, owner, ticket.ID, "OWNER@example.com", domain.ShareRoleEdit)
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.Share(ctx, owner, ticket.ID, "not-an-email", domain.ShareRoleView)
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.Share(ctx, owner, ticket.ID, "x@example.com", "owner")
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.tickets.Share(ctx, viewer, ticket.ID, "x@example.com", domain.ShareRoleView)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestTicketUnshare(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket := f.ticket(t, owner, "Shared")
	_, err := f.tickets.Share(ctx, owner, ticket.ID, "a@example.com", domain.ShareRoleView)
	require.NoError(t, err)
	_, err = f.tickets.Share(ctx, owner, ticket.ID, "b@example.com", domain.ShareRoleEdit)
	require.NoError(t, err)

	got, err := f.tickets.Unshare(ctx, owner, ticket.ID, "A@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, []domain.ShareEntry{{Email: "b@example.com", Role: domain.ShareRoleEdit}}, got.SharedWith)

	before := len(f.events.types())
	got, err = f.tickets.Unshare(ctx, owner, ticket.ID, "never@example.com")
	require.NoError(t, err)
	assert.Len(t, got.SharedWith, 1)
	assert.Len(t, f.events.types(), before)
}

func TestTicketLists_Pagination(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	for i := 0; i < 15; i++ {
		f.ticket(t, owner, fmt.Sprintf("Ticket %02d", i))
	}

	first, err := f.tickets.ListOwned(ctx, owner, "", PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.True(t, first.HasMore)
	assert.Equal(t, "Ticket 14", first.Items[0].Title)

	second, err := f.tickets.ListOwned(ctx, owner, "", PageRequest{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)
	assert.False(t, second.HasMore)
	assert.Equal(t, 10, second.Offset)
}

func TestTicketLists_Scopes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	agent := f.user(t, "agent", "agent@example.com", false)
	admin := f.user(t, "admin", "admin@example.com", true)

	printer := f.ticket(t, owner, "Printer 100% broken")
	vpn := f.ticket(t, owner, "VPN")
	_, err := f.tickets.Share(ctx, owner, printer.ID, "AGENT@example.com", domain.ShareRoleView)
	require.NoError(t, err)
	_, err = f.tickets.Assign(ctx, admin, vpn.ID, &agent.ID)
	require.NoError(t, err)

	shared, err := f.tickets.ListShared(ctx, agent, "", PageRequest{})
	require.NoError(t, err)
	require.Len(t, shared.Items, 1)
	assert.Equal(t, printer.ID, shared.Items[0].ID)

	assigned, err := f.tickets.ListAssigned(ctx, agent, "", PageRequest{})
	require.NoError(t, err)
	require.Len(t, assigned.Items, 1)
	assert.Equal(t, vpn.ID, assigned.Items[0].ID)

	found, err := f.tickets.Search(ctx, admin, "100%", PageRequest{})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, printer.ID, found.Items[0].ID)

	owned, err := f.tickets.ListOwned(ctx, owner, "vpn", PageRequest{})
	require.NoError(t, err)
	require.Len(t, owned.Items, 1)

	_, err = f.tickets.Search(ctx, owner, "", PageRequest{})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestTicketLists_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(r *repository.Repositories) {
		r.Tickets = failingTicketLists{r.Tickets}
	})
	owner := f.user(t, "owner", "owner@example.com", false)

	_, err := f.tickets.ListOwned(context.Background(), owner, "", PageRequest{})
	requireCode(t, err, apperrors.CodeDependencyFailure)
}

func TestTicketAssign(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	admin := f.user(t, "admin", "admin@example.com", true)
	ticket := f.ticket(t, owner, "Assign me")

	_, err := f.tickets.Assign(ctx, owner, ticket.ID, &owner.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.tickets.Assign(ctx, admin, ticket.ID, ptr("ghost"))
	requireCode(t, err, apperrors.CodeNotFound)

	got, err := f.tickets.Assign(ctx, admin, ticket.ID, &admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", *got.AssignedTo)

	got, err = f.tickets.Assign(ctx, admin, ticket.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
}

func TestTicketDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	keep := f.ticket(t, owner, "Keep")
	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "Drop", Content: "c", Image: ptr("drop.png")})
	require.NoError(t, err)
	_, err = f.comments.Add(ctx, owner, ticket.ID, "first", nil)
	require.NoError(t, err)

	require.NoError(t, f.tickets.Delete(ctx, owner, ticket.ID))

	_, err = f.tickets.Get(ctx, owner, ticket.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	stored, err := f.repos.Users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, stored.TicketIDs)
	left, err := f.repos.Comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{"drop.png"}, f.images.deleted)
	assert.Contains(t, f.events.types(), events.EventTicketDeleted)
}

func TestTicketDelete_Permissions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	editor := f.user(t, "editor", "editor@example.com", false)
	admin := f.user(t, "admin", "admin@example.com", true)
	ticket := f.ticket(t, owner, "Guarded")
	_, err := f.tickets.Share(ctx, owner, ticket.ID, editor.Email, domain.ShareRoleEdit)
	require.NoError(t, err)

	requireCode(t, f.tickets.Delete(ctx, editor, ticket.ID), apperrors.CodeForbidden)
	require.NoError(t, f.tickets.Delete(ctx, admin, ticket.ID))

	stored, err := f.repos.Users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.TicketIDs)
}

func TestTicketDelete_ImageFailureStillCommits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.images.err = errInjected
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "Pic", Content: "c", Image: ptr("pic.png")})
	require.NoError(t, err)

	require.NoError(t, f.tickets.Delete(ctx, owner, ticket.ID))
	_, err = f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTicketDelete_ActivityFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(r *repository.Repositories) {
		r.Activities = failingActivities{r.Activities}
	})
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)

	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "Audit", Content: "c"})
	require.NoError(t, err)
	_, err = f.tickets.Share(ctx, owner, ticket.ID, "x@example.com", domain.ShareRoleView)
	require.NoError(t, err)
	require.NoError(t, f.tickets.Delete(ctx, owner, ticket.ID))
}

func TestTicketDelete_RollsBackOnStoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(r *repository.Repositories) {
		r.Comments = failingCommentPurge{r.Comments}
	})
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "Atomic", Content: "c", Image: ptr("a.png")})
	require.NoError(t, err)

	err = f.tickets.Delete(ctx, owner, ticket.ID)
	requireCode(t, err, apperrors.CodeDependencyFailure)

	_, err = f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	stored, err := f.repos.Users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.ID}, stored.TicketIDs)
	assert.Empty(t, f.images.deleted)
}

func TestTicketWrites_WaitForLockedTicket(t *testing.T) {
	t.Parallel()

	g := newGate()
	f := newFixture(t, func(r *repository.Repositories) {
		r.Tickets = gatedTickets{TicketRepository: r.Tickets, gate: g}
	})
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket := f.ticket(t, owner, "Race")
	_, err := f.tickets.TransitionStatus(ctx, owner, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	g.arm()
	shared := make(chan error, 1)
	go func() {
		_, err := f.tickets.Share(ctx, owner, ticket.ID, "pat@example.com", domain.ShareRoleView)
		shared <- err
	}()
	g.waitEntered(t)

	resolved := make(chan error, 1)
	go func() {
		_, err := f.tickets.TransitionStatus(ctx, owner, ticket.ID, domain.TicketStatusResolved)
		resolved <- err
	}()
	require.NoError(t, awaitBlocked(t, resolved, g.release))
	require.NoError(t, <-shared)

	stored, err := f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
	assert.Equal(t, []domain.ShareEntry{{Email: "pat@example.com", Role: domain.ShareRoleView}}, stored.SharedWith)
}

func TestTicketShare_ConcurrentSharesKeepEveryEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)
	ticket := f.ticket(t, owner, "Crowded")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.tickets.Share(ctx, owner, ticket.ID, fmt.Sprintf("u%d@example.com", i), domain.ShareRoleView)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, stored.SharedWith, n)
}

func TestTicketDelete_KeepsImagesReferencedElsewhere(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	victim := f.user(t, "victim", "victim@example.com", false)
	other := f.user(t, "other", "other@example.com", false)
	original, err := f.tickets.Create(ctx, victim, TicketCreateInput{Title: "Mine", Content: "c", Image: ptr("uploads/victim.png")})
	require.NoError(t, err)

	copied, err := f.tickets.Create(ctx, other, TicketCreateInput{Title: "Borrowed", Content: "c", Image: ptr("uploads/victim.png")})
	require.NoError(t, err)
	require.NoError(t, f.tickets.Delete(ctx, other, copied.ID))
	assert.Empty(t, f.images.deleted)

	reused, err := f.tickets.Create(ctx, other, TicketCreateInput{Title: "Again", Content: "c", Image: ptr("uploads/victim.png")})
	require.NoError(t, err)
	_, err = f.tickets.UpdateFields(ctx, other, reused.ID, TicketUpdateInput{ClearImage: true})
	require.NoError(t, err)
	assert.Empty(t, f.images.deleted)

	stored, err := f.repos.Tickets.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/victim.png", *stored.Image)

	require.NoError(t, f.tickets.Delete(ctx, victim, original.ID))
	assert.Equal(t, []string{"uploads/victim.png"}, f.images.deleted)
}

func TestTicketCreate_RejectsUnmanagedImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", "owner@example.com", false)

	_, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "t", Content: "c", Image: ptr("uploads/../secrets.env")})
	requireCode(t, err, apperrors.CodeValidationFailed)

	ticket := f.ticket(t, owner, "Later")
	_, err = f.tickets.UpdateFields(ctx, owner, ticket.ID, TicketUpdateInput{Image: ptr("../other.png")})
	requireCode(t, err, apperrors.CodeValidationFailed)
}
