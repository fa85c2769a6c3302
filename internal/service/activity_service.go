package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/observability"
)

// ActivityService records domain events in the log and in business metrics.
// It delivers nothing to end users.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     nopIfNil(logger),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	handlers := a.handlers()
	for _, eventType := range events.AllEventTypes {
		if handler, ok := handlers[eventType]; ok {
			a.dispatcher.Subscribe(eventType, handler)
		}
	}
}

func (a *ActivityService) handlers() map[events.EventType]events.EventHandler {
	return map[events.EventType]events.EventHandler{
		events.EventComplaintSubmitted:     a.handleComplaintSubmitted,
		events.EventComplaintStatusChanged: a.handleStatusChanged,
		events.EventComplaintAssigned:      a.handleAssigned,
		events.EventComplaintEscalated:     a.handleEscalated,
		events.EventMessagePosted:          a.handleMessagePosted,
	}
}


func (a *ActivityService) handleComplaintSubmitted(_ context.Context, event events.Event) error {
	a.logger.Info("ComplaintSubmitted", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.ComplaintSubmittedPayload); ok {
		a.metrics.ComplaintSubmitted(p.Department)
	}
	return nil
}

func (a *ActivityService) handleStatusChanged(_ context.Context, event events.Event) error {
	a.logger.Info("ComplaintStatusChanged", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.ComplaintStatusChangedPayload); ok {
		a.metrics.StatusChanged(statusLabel(p.Status))
	}
	return nil
}

func (a *ActivityService) handleAssigned(_ context.Context, event events.Event) error {
	a.logger.Info("ComplaintAssigned", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	a.metrics.ComplaintAssigned()
	return nil
}

func (a *ActivityService) handleEscalated(_ context.Context, event events.Event) error {
	a.logger.Info("ComplaintEscalated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	a.metrics.ComplaintEscalated()
	return nil
}

func (a *ActivityService) handleMessagePosted(_ context.Context, event events.Event) error {
	a.logger.Info("MessagePosted", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	a.metrics.MessagePosted()
	return nil
}

// statusLabel folds free-text statuses into a bounded label set.
func statusLabel(status domain.ComplaintStatus) string {
	switch status {
	case domain.ComplaintStatusPending, domain.ComplaintStatusInProgress, domain.ComplaintStatusCompleted:
		return string(status)
	}
	return "other"
}
