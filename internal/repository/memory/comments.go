package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type commentRepository struct{ s *Store }

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.comments[comment.ID]; ok {
		return fmt.Errorf("comment %s: %w", comment.ID, repository.ErrDuplicate)
	}
	r.s.data.comments[comment.ID] = record[domain.Comment]{seq: r.s.nextSeq(), value: cloneComment(*comment)}
	return nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.comments[comment.ID]
	if !ok {
		return fmt.Errorf("comment %s: %w", comment.ID, repository.ErrNotFound)
	}
	rec.value.Content = comment.Content
	rec.value.UpdatedAt = clonePtr(comment.UpdatedAt)
	r.s.data.comments[comment.ID] = rec
	return nil
}

func (r *commentRepository) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.data.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, repository.ErrNotFound)
	}
	comment := cloneComment(rec.value)
	return &comment, nil
}

func (r *commentRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	matched := make([]record[domain.Comment], 0)
	for _, rec := range r.s.data.comments {
		if rec.value.TicketID == ticketID {
			matched = append(matched, rec)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.value.CreatedAt.Equal(b.value.CreatedAt) {
			return a.value.CreatedAt.Before(b.value.CreatedAt)
		}
		return a.seq < b.seq
	})
	out := make([]domain.Comment, 0, len(matched))
	for _, rec := range matched {
		out = append(out, cloneComment(rec.value))
	}
	return out, nil
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	defer r.s.lockWrite(ctx)()
	for _, id := range ids {
		delete(r.s.data.comments, id)
	}
	return nil
}

func (r *commentRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	defer r.s.lockWrite(ctx)()
	for id, rec := range r.s.data.comments {
		if rec.value.TicketID == ticketID {
			delete(r.s.data.comments, id)
		}
	}
	return nil
}
