// Package memory is an in-process storage backend used when no database is
// configured and as the store behind service tests.
package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// Store holds every collection behind one lock. Transactions are serialized
// and restore a snapshot on failure. Writes outside a transaction wait for the
// running one to finish, so a transaction that reads a record and writes it
// back sees no interleaved change.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
}

type record[T any] struct {
	seq   int64
	value T
}

type state struct {
	seq        int64
	users      map[string]record[domain.User]
	tickets    map[string]record[domain.Ticket]
	comments   map[string]record[domain.Comment]
	activities map[string]record[domain.Activity]
	news       map[string]record[domain.NewsPost]
}

type txKey struct{}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: state{
		users:      map[string]record[domain.User]{},
		tickets:    map[string]record[domain.Ticket]{},
		comments:   map[string]record[domain.Comment]{},
		activities: map[string]record[domain.Activity]{},
		news:       map[string]record[domain.NewsPost]{},
	}}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:      &userRepository{s},
		Tickets:    &ticketRepository{s},
		Comments:   &commentRepository{s},
		Activities: &activityRepository{s},
		News:       &newsRepository{s},
		ImageRefs:  &imageReferenceRepository{s},
		Tx:         s,
	}
}

// RunInTx runs fn and restores the pre-transaction state if it fails or panics.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		restore()
		return err
	}
	return nil
}

// lockWrite takes the data lock and returns its release. Outside a
// transaction it also holds txMu for the duration of the write.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) nextSeq() int64 {
	s.data.seq++
	return s.data.seq
}

func (st state) clone() state {
	out := state{
		seq:        st.seq,
		users:      make(map[string]record[domain.User], len(st.users)),
		tickets:    make(map[string]record[domain.Ticket], len(st.tickets)),
		comments:   make(map[string]record[domain.Comment], len(st.comments)),
		activities: make(map[string]record[domain.Activity], len(st.activities)),
		news:       make(map[string]record[domain.NewsPost], len(st.news)),
	}
	for k, v := range st.users {
		out.users[k] = record[domain.User]{seq: v.seq, value: cloneUser(v.value)}
	}
	for k, v := range st.tickets {
		out.tickets[k] = record[domain.Ticket]{seq: v.seq, value: cloneTicket(v.value)}
	}
	for k, v := range st.comments {
		out.comments[k] = record[domain.Comment]{seq: v.seq, value: cloneComment(v.value)}
	}
	for k, v := range st.activities {
		out.activities[k] = v
	}
	for k, v := range st.news {
		out.news[k] = record[domain.NewsPost]{seq: v.seq, value: cloneNews(v.value)}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u domain.User) domain.User {
	u.Organization = clonePtr(u.Organization)
	u.TicketIDs = append([]string(nil), u.TicketIDs...)
	return u
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Image = clonePtr(t.Image)
	t.AssignedTo = clonePtr(t.AssignedTo)
	t.SharedWith = append([]domain.ShareEntry(nil), t.SharedWith...)
	return t
}

func cloneComment(c domain.Comment) domain.Comment {
	c.ParentID = clonePtr(c.ParentID)
	c.UpdatedAt = clonePtr(c.UpdatedAt)
	return c
}

func cloneNews(n domain.NewsPost) domain.NewsPost {
	n.Images = append([]string(nil), n.Images...)
	n.UpdatedAt = clonePtr(n.UpdatedAt)
	return n
}

// newestFirst orders by creation time descending, newest insert first on ties.
func newestFirst[T any](a, b record[T], at func(T) int64) bool {
	ta, tb := at(a.value), at(b.value)
	if ta != tb {
		return ta > tb
	}
	return a.seq > b.seq
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = repository.NormalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
