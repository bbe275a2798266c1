package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// ActivityRecorder appends to the activity log. It never reports failure to
// the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, activityType domain.ActivityType, message, userID string, ticketID *string) domain.Activity
}

// ImageStore resolves image references to storage keys and removes stored
// objects. Key returns "" for references the store does not manage.
type ImageStore interface {
	Key(ref string) string
	Delete(ctx context.Context, ref string) error
}

// aftermath runs the secondary effects of a committed write: activity log,
// event publication and image cleanup. None of them can fail the write.
type aftermath struct {
	activity   ActivityRecorder
	dispatcher events.Dispatcher
	images     ImageStore
	imageRefs  repository.ImageReferenceRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func newAftermath(activity ActivityRecorder, dispatcher events.Dispatcher, images ImageStore, imageRefs repository.ImageReferenceRepository, metrics *observability.Metrics, logger *zap.Logger) aftermath {
	if logger == nil {
		logger = zap.NewNop()
	}
	return aftermath{
		activity:   activity,
		dispatcher: dispatcher,
		images:     images,
		imageRefs:  imageRefs,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

func (a aftermath) record(ctx context.Context, activityType domain.ActivityType, message, userID string, ticketID *string) {
	if a.activity == nil {
		return
	}
	a.activity.Record(ctx, activityType, message, userID, ticketID)
}

func (a aftermath) publishEvent(ctx context.Context, event events.Event) {
	if a.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = a.now().UTC()
	}
	_ = a.dispatcher.Publish(ctx, event)
}

// imageKey trims ref and resolves it to the storage key that is persisted.
// A reference the image store does not manage is a validation error.
func (a aftermath) imageKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || a.images == nil {
		return ref, nil
	}
	key := a.images.Key(ref)
	if key == "" {
		return "", apperrors.NewValidationError("invalid image reference", map[string]any{"image": ref})
	}
	return key, nil
}

// removeImages deletes refs that no ticket or news post references any more.
// Without a reference lookup nothing is deleted.
func (a aftermath) removeImages(ctx context.Context, refs ...string) {
	if a.images == nil || a.imageRefs == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		inUse, err := a.imageRefs.ImageInUse(ctx, ref)
		if err != nil {
			a.metrics.RecordSideEffectFailure("image_delete")
			a.logger.Warn("image reference check failed", zap.String("image", ref), zap.Error(err))
			continue
		}
		if inUse {
			a.logger.Debug("image still referenced; keeping it", zap.String("image", ref))
			continue
		}
		if err := a.images.Delete(ctx, ref); err != nil {
			a.metrics.RecordSideEffectFailure("image_delete")
			a.logger.Warn("image cleanup failed", zap.String("image", ref), zap.Error(err))
		}
	}
}

func (a aftermath) timestamp() time.Time {
	return a.now().UTC()
}
