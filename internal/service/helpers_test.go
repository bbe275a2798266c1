package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var errInjected = errors.New("injected failure")

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "want %s, got %v", code, err)
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeImages) Key(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "..") {
		return ""
	}
	return ref
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.err
}

// gate pauses the first call made after arm until release is called.
type gate struct {
	armed   atomic.Bool
	entered chan struct{}
	proceed chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), proceed: make(chan struct{})}
}

func (g *gate) arm() { g.armed.Store(true) }

func (g *gate) release() { close(g.proceed) }

func (g *gate) pass() {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.proceed
	}
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("gated call never started")
	}
}

// gatedTickets pauses after a locked read.
type gatedTickets struct {
	repository.TicketRepository
	*gate
}

func (g gatedTickets) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := g.TicketRepository.GetByIDForUpdate(ctx, id)
	g.pass()
	return ticket, err
}

type gatedUsers struct {
	repository.UserRepository
	*gate
}

func (g gatedUsers) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	user, err := g.UserRepository.GetByIDForUpdate(ctx, id)
	g.pass()
	return user, err
}

// awaitBlocked fails the test when done delivers before the wait elapses,
// then hands back the result once it arrives after unblock.
func awaitBlocked(t *testing.T, done <-chan error, unblock func()) error {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("call finished while the row was held: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	unblock()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("call never finished")
		return nil
	}
}

type failingActivities struct {
	repository.ActivityRepository
}

func (failingActivities) Create(context.Context, *domain.Activity) error { return errInjected }

type failingCommentPurge struct {
	repository.CommentRepository
}

func (failingCommentPurge) DeleteByTicket(context.Context, string) error { return errInjected }

type failingTicketLists struct {
	repository.TicketRepository
}

func (failingTicketLists) List(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, errInjected
}

type fixture struct {
	repos    repository.Repositories
	events   *eventLog
	images   *fakeImages
	activity *ActivityService
	tickets  *TicketService
	comments *CommentService
	news     *NewsService
	users    *UserService
}

func newFixture(t *testing.T, overrides ...func(*repository.Repositories)) *fixture {
	t.Helper()

	repos := memory.NewStore().Repositories()
	for _, override := range overrides {
		override(&repos)
	}

	log := &eventLog{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, log.handle)
	}

	images := &fakeImages{}
	activity := NewActivityService(ActivityDependencies{ActivityRepo: repos.Activities, Logger: zap.NewNop()})
	return &fixture{
		repos:    repos,
		events:   log,
		images:   images,
		activity: activity,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:  repos.Tickets,
			UserRepo:    repos.Users,
			CommentRepo: repos.Comments,
			Tx:          repos.Tx,
			Images:      images,
			ImageRefs:   repos.ImageRefs,
			Activity:    activity,
			Dispatcher:  dispatcher,
			Logger:      zap.NewNop(),
		}),
		comments: NewCommentService(CommentDependencies{
			CommentRepo: repos.Comments,
			TicketRepo:  repos.Tickets,
			Tx:          repos.Tx,
			Activity:    activity,
			Dispatcher:  dispatcher,
		}),
		news: NewNewsService(NewsDependencies{
			NewsRepo:   repos.News,
			Tx:         repos.Tx,
			Images:     images,
			ImageRefs:  repos.ImageRefs,
			Activity:   activity,
			Dispatcher: dispatcher,
		}),
		users: NewUserService(UserDependencies{UserRepo: repos.Users, Tx: repos.Tx, Activity: activity}),
	}
}

func (f *fixture) user(t *testing.T, id, email string, admin bool) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &domain.User{
		ID:          id,
		Email:       email,
		DisplayName: id,
		IsAdmin:     admin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.repos.Users.Create(context.Background(), user))
	return user
}

func (f *fixture) ticket(t *testing.T, owner *domain.User, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), owner, TicketCreateInput{Title: title, Content: "details"})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) activities(t *testing.T, userID string) []domain.Activity {
	t.Helper()
	items, err := f.repos.Activities.ListByUser(context.Background(), userID, 100, 0)
	require.NoError(t, err)
	return items
}
