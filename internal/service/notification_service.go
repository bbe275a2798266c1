package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// Broadcaster sends a named payload to connected clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, name string, payload any) error
}

// NotificationService relays domain events to the broadcast channel.
type NotificationService struct {
	dispatcher  events.Dispatcher
	broadcaster Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger
	cfg         config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster Broadcaster, metrics *observability.Metrics, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || !n.cfg.Enabled {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

// handleEvent logs broadcast failures and never returns them.
func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	if n.broadcaster == nil {
		return nil
	}
	err := n.broadcaster.Broadcast(ctx, string(event.Type), event)
	n.metrics.RecordBroadcast(string(event.Type), err)
	if err != nil {
		n.logger.Warn("broadcast failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}
	n.logger.Debug("broadcast", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID))
	return nil
}
