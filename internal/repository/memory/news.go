package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type newsRepository struct{ s *Store }

func (r *newsRepository) Create(ctx context.Context, post *domain.NewsPost) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.news[post.ID]; ok {
		return fmt.Errorf("news post %s: %w", post.ID, repository.ErrDuplicate)
	}
	r.s.data.news[post.ID] = record[domain.NewsPost]{seq: r.s.nextSeq(), value: cloneNews(*post)}
	return nil
}

func (r *newsRepository) Update(ctx context.Context, post *domain.NewsPost) error {
	defer r.s.lockWrite(ctx)()
	rec, ok := r.s.data.news[post.ID]
	if !ok {
		return fmt.Errorf("news post %s: %w", post.ID, repository.ErrNotFound)
	}
	rec.value.Title = post.Title
	rec.value.Content = post.Content
	rec.value.Images = append([]string(nil), post.Images...)
	rec.value.UpdatedAt = clonePtr(post.UpdatedAt)
	r.s.data.news[post.ID] = rec
	return nil
}

func (r *newsRepository) GetByID(_ context.Context, id string) (*domain.NewsPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.data.news[id]
	if !ok {
		return nil, fmt.Errorf("news post %s: %w", id, repository.ErrNotFound)
	}
	post := cloneNews(rec.value)
	return &post, nil
}

func (r *newsRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.NewsPost, error) {
	return r.GetByID(ctx, id)
}

func (r *newsRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.data.news[id]; !ok {
		return fmt.Errorf("news post %s: %w", id, repository.ErrNotFound)
	}
	delete(r.s.data.news, id)
	return nil
}

func (r *newsRepository) List(_ context.Context, limit, offset int) ([]domain.NewsPost, error) {
	r.s.mu.RLock()
	all := make([]record[domain.NewsPost], 0, len(r.s.data.news))
	for _, rec := range r.s.data.news {
		all = append(all, rec)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i], all[j], func(n domain.NewsPost) int64 { return n.CreatedAt.UnixNano() })
	})
	out := make([]domain.NewsPost, 0, len(all))
	for _, rec := range page(all, limit, offset) {
		out = append(out, cloneNews(rec.value))
	}
	return out, nil
}
