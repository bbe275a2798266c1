package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type ticketRepository struct{ s *Store }

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.tickets[ticket.ID]; ok {
		return fmt.Errorf("ticket %s: %w", ticket.ID, repository.ErrDuplicate)
	}
	r.s.data.tickets[ticket.ID] = record[domain.Ticket]{seq: r.s.nextSeq(), value: normalizedTicket(*ticket)}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.tickets[ticket.ID]
	if !ok {
		return fmt.Errorf("ticket %s: %w", ticket.ID, repository.ErrNotFound)
	}
	updated := normalizedTicket(*ticket)
	updated.CreatedBy = rec.value.CreatedBy
	updated.CreatedAt = rec.value.CreatedAt
	rec.value = updated
	r.s.data.tickets[ticket.ID] = rec
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.data.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", id, repository.ErrNotFound)
	}
	ticket := cloneTicket(rec.value)
	return &ticket, nil
}

// GetByIDForUpdate relies on RunInTx serializing transactions.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.tickets[id]; !ok {
		return fmt.Errorf("ticket %s: %w", id, repository.ErrNotFound)
	}
	delete(r.s.data.tickets, id)
	return nil
}

func (r *ticketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	matched := make([]record[domain.Ticket], 0)
	for _, rec := range r.s.data.tickets {
		if ticketMatches(&rec.value, filter) {
			matched = append(matched, rec)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i], matched[j], func(t domain.Ticket) int64 { return t.CreatedAt.UnixNano() })
	})
	out := make([]domain.Ticket, 0, len(matched))
	for _, rec := range page(matched, filter.Limit, filter.Offset) {
		out = append(out, cloneTicket(rec.value))
	}
	return out, nil
}

func ticketMatches(t *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
		return false
	}
	if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.SharedWith != nil {
		if _, ok := t.ShareFor(*filter.SharedWith); !ok {
			return false
		}
	}
	return repository.MatchesAny(filter.Search, t.Title, t.Content)
}

func normalizedTicket(t domain.Ticket) domain.Ticket {
	t = cloneTicket(t)
	for i := range t.SharedWith {
		t.SharedWith[i].Email = domain.NormalizeEmail(t.SharedWith[i].Email)
	}
	return t
}
