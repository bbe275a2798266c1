package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// ActivitySink accepts entries for asynchronous persistence.
type ActivitySink interface {
	Submit(activity domain.Activity)
}

// ActivityService records and lists the per-user activity log.
type ActivityService struct {
	repo         repository.ActivityRepository
	sink         ActivitySink
	metrics      *observability.Metrics
	logger       *zap.Logger
	writeTimeout time.Duration
	now          func() time.Time
}

// ActivityDependencies bundles collaborators for activity service. Without a
// Sink entries are written inline.
type ActivityDependencies struct {
	ActivityRepo repository.ActivityRepository
	Sink         ActivitySink
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	WriteTimeout time.Duration
}

// NewActivityService creates the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ActivityService{
		repo:         deps.ActivityRepo,
		sink:         deps.Sink,
		metrics:      deps.Metrics,
		logger:       logger,
		writeTimeout: timeout,
		now:          time.Now,
	}
}

// Record stamps a new entry and hands it off for writing. It never fails.
func (s *ActivityService) Record(ctx context.Context, activityType domain.ActivityType, message, userID string, ticketID *string) domain.Activity {
	activity := domain.Activity{
		ID:        uuid.NewString(),
		Type:      activityType,
		Message:   message,
		UserID:    userID,
		TicketID:  ticketID,
		CreatedAt: s.now().UTC(),
	}
	if s.sink != nil {
		s.sink.Submit(activity)
		return activity
	}
	s.write(ctx, activity)
	return activity
}

func (s *ActivityService) write(ctx context.Context, activity domain.Activity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, &activity); err != nil {
		s.metrics.RecordActivity(observability.ActivityFailed)
		s.logger.Warn("activity write failed",
			zap.String("activity_type", string(activity.Type)),
			zap.String("user_id", activity.UserID),
			zap.Error(err))
		return
	}
	s.metrics.RecordActivity(observability.ActivityWritten)
}

// ListForUser returns actor's own activity, newest first.
func (s *ActivityService) ListForUser(ctx context.Context, actor *domain.User, page PageRequest) (Page[domain.Activity], error) {
	if err := requireActor(actor); err != nil {
		return Page[domain.Activity]{}, err
	}
	return fetchPage(page, func(limit, offset int) ([]domain.Activity, error) {
		items, err := s.repo.ListByUser(ctx, actor.ID, limit, offset)
		if err != nil {
			return nil, storeError(err, "activity", actor.ID)
		}
		return items, nil
	})
}
