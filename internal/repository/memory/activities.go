package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type activityRepository struct{ s *Store }

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.activities[activity.ID]; ok {
		return fmt.Errorf("activity %s: %w", activity.ID, repository.ErrDuplicate)
	}
	stored := *activity
	stored.TicketID = clonePtr(activity.TicketID)
	r.s.data.activities[activity.ID] = record[domain.Activity]{seq: r.s.nextSeq(), value: stored}
	return nil
}

func (r *activityRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Activity, error) {
	r.s.mu.RLock()
	matched := make([]record[domain.Activity], 0)
	for _, rec := range r.s.data.activities {
		if rec.value.UserID == userID {
			matched = append(matched, rec)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i], matched[j], func(a domain.Activity) int64 { return a.CreatedAt.UnixNano() })
	})
	out := make([]domain.Activity, 0, len(matched))
	for _, rec := range page(matched, limit, offset) {
		out = append(out, rec.value)
	}
	return out, nil
}
