package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrDuplicate)
	}
	email := domain.NormalizeEmail(user.Email)
	for _, existing := range r.s.data.users {
		if existing.value.Email == email {
			return fmt.Errorf("user %s: %w", email, repository.ErrDuplicate)
		}
	}
	stored := cloneUser(*user)
	stored.Email = email
	if stored.TicketIDs == nil {
		stored.TicketIDs = []string{}
	}
	r.s.data.users[user.ID] = record[domain.User]{seq: r.s.nextSeq(), value: stored}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrNotFound)
	}
	rec.value.DisplayName = user.DisplayName
	rec.value.IsAdmin = user.IsAdmin
	rec.value.Organization = clonePtr(user.Organization)
	rec.value.PasswordHash = user.PasswordHash
	rec.value.UpdatedAt = user.UpdatedAt
	r.s.data.users[user.ID] = rec
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	user := cloneUser(rec.value)
	return &user, nil
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := domain.NormalizeEmail(email)
	for _, rec := range r.s.data.users {
		if rec.value.Email == key {
			user := cloneUser(rec.value)
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", key, repository.ErrNotFound)
}

func (r *userRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	matched := make([]record[domain.User], 0, len(r.s.data.users))
	for _, rec := range r.s.data.users {
		if repository.MatchesAny(filter.Search, rec.value.Email, rec.value.DisplayName) {
			matched = append(matched, rec)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i], matched[j], func(u domain.User) int64 { return u.CreatedAt.UnixNano() })
	})
	out := make([]domain.User, 0, len(matched))
	for _, rec := range page(matched, filter.Limit, filter.Offset) {
		out = append(out, cloneUser(rec.value))
	}
	return out, nil
}

func (r *userRepository) AddTicket(ctx context.Context, userID, ticketID string) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	ids := removeString(rec.value.TicketIDs, ticketID)
	rec.value.TicketIDs = append(ids, ticketID)
	r.s.data.users[userID] = rec
	return nil
}

func (r *userRepository) RemoveTicket(ctx context.Context, userID, ticketID string) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	rec.value.TicketIDs = removeString(rec.value.TicketIDs, ticketID)
	r.s.data.users[userID] = rec
	return nil
}

func removeString(in []string, target string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
