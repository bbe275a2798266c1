package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// NewsService manages the admin news feed.
type NewsService struct {
	news  repository.NewsRepository
	tx    repository.TxManager
	after aftermath
}

// NewsDependencies bundles collaborators for news service.
type NewsDependencies struct {
	NewsRepo   repository.NewsRepository
	Tx         repository.TxManager
	Images     ImageStore
	ImageRefs  repository.ImageReferenceRepository
	Activity   ActivityRecorder
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewsInput describes a new post.
type NewsInput struct {
	Title   string
	Content string
	Images  []string
}

// NewsUpdateInput lists the fields to change. A non-nil Images replaces the
// whole list.
type NewsUpdateInput struct {
	Title   *string
	Content *string
	Images  *[]string
}

// NewNewsService creates the service.
func NewNewsService(deps NewsDependencies) *NewsService {
	return &NewsService{
		news:  deps.NewsRepo,
		tx:    deps.Tx,
		after: newAftermath(deps.Activity, deps.Dispatcher, deps.Images, deps.ImageRefs, deps.Metrics, deps.Logger),
	}
}

// Create publishes a post. Admin only.
func (s *NewsService) Create(ctx context.Context, actor *domain.User, input NewsInput) (*domain.NewsPost, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	images, err := s.imageKeys(input.Images)
	if err != nil {
		return nil, err
	}
	post := &domain.NewsPost{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(input.Title),
		Content:    strings.TrimSpace(input.Content),
		Images:     images,
		CreatedBy:  actor.ID,
		AuthorName: authorName(actor),
		CreatedAt:  s.after.timestamp(),
	}
	if err := validateNews(post); err != nil {
		return nil, err
	}
	if err := s.news.Create(ctx, post); err != nil {
		return nil, storeError(err, "news post", post.ID)
	}

	s.after.record(ctx, domain.ActivityNewsPublished, fmt.Sprintf("Published news %q", post.Title), actor.ID, nil)
	s.publish(ctx, events.EventNewsCreated, actor, post)
	return post, nil
}

// Update edits a post. Images dropped from the list are removed from storage.
func (s *NewsService) Update(ctx context.Context, actor *domain.User, id string, input NewsUpdateInput) (*domain.NewsPost, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Title == nil && input.Content == nil && input.Images == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	var next []string
	if input.Images != nil {
		keys, err := s.imageKeys(*input.Images)
		if err != nil {
			return nil, err
		}
		next = keys
	}

	var (
		post    *domain.NewsPost
		dropped []string
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if post, err = s.load(ctx, id, true); err != nil {
			return err
		}
		if input.Title != nil {
			post.Title = strings.TrimSpace(*input.Title)
		}
		if input.Content != nil {
			post.Content = strings.TrimSpace(*input.Content)
		}
		if input.Images != nil {
			dropped = missingFrom(post.Images, next)
			post.Images = next
		}
		if err := validateNews(post); err != nil {
			return err
		}
		now := s.after.timestamp()
		post.UpdatedAt = &now
		return storeError(s.news.Update(ctx, post), "news post", post.ID)
	})
	if err != nil {
		return nil, err
	}

	s.after.removeImages(ctx, dropped...)
	s.after.record(ctx, domain.ActivityNewsUpdated, fmt.Sprintf("Updated news %q", post.Title), actor.ID, nil)
	s.publish(ctx, events.EventNewsUpdated, actor, post)
	return post, nil
}

// Delete removes a post and, best effort, its images. Admin only.
func (s *NewsService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	var post *domain.NewsPost
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if post, err = s.load(ctx, id, true); err != nil {
			return err
		}
		return storeError(s.news.Delete(ctx, post.ID), "news post", post.ID)
	})
	if err != nil {
		return err
	}

	s.after.removeImages(ctx, post.Images...)
	s.after.record(ctx, domain.ActivityNewsDeleted, fmt.Sprintf("Deleted news %q", post.Title), actor.ID, nil)
	s.publish(ctx, events.EventNewsDeleted, actor, post)
	return nil
}

// Get returns one post.
func (s *NewsService) Get(ctx context.Context, actor *domain.User, id string) (*domain.NewsPost, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.load(ctx, id, false)
}

// List returns posts newest first.
func (s *NewsService) List(ctx context.Context, actor *domain.User, page PageRequest) (Page[domain.NewsPost], error) {
	if err := requireActor(actor); err != nil {
		return Page[domain.NewsPost]{}, err
	}
	return fetchPage(page, func(limit, offset int) ([]domain.NewsPost, error) {
		items, err := s.news.List(ctx, limit, offset)
		if err != nil {
			return nil, storeError(err, "news post", "list")
		}
		return items, nil
	})
}

func (s *NewsService) load(ctx context.Context, id string, forUpdate bool) (*domain.NewsPost, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("news id required", nil)
	}
	get := s.news.GetByID
	if forUpdate {
		get = s.news.GetByIDForUpdate
	}
	post, err := get(ctx, id)
	if err != nil {
		return nil, storeError(err, "news post", id)
	}
	return post, nil
}

func (s *NewsService) publish(ctx context.Context, eventType events.EventType, actor *domain.User, post *domain.NewsPost) {
	s.after.publishEvent(ctx, events.Event{
		Type:    eventType,
		ActorID: actor.ID,
		Payload: events.NewsPayload{ID: post.ID, Title: post.Title},
	})
}

func validateNews(post *domain.NewsPost) error {
	details := map[string]any{}
	if post.Title == "" {
		details["title"] = "required"
	} else if len([]rune(post.Title)) > maxTitleLength {
		details["title"] = fmt.Sprintf("at most %d characters", maxTitleLength)
	}
	if post.Content == "" {
		details["content"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid news post", details)
	}
	return nil
}

// imageKeys resolves refs to stored keys, dropping blanks and duplicates.
func (s *NewsService) imageKeys(refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		key, err := s.after.imageKey(ref)
		if err != nil {
			return nil, err
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

func missingFrom(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, ref := range after {
		keep[ref] = true
	}
	var out []string
	for _, ref := range before {
		if !keep[ref] {
			out = append(out, ref)
		}
	}
	return out
}
