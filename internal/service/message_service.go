package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/repository"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

const previewLength = 80

// MessageService manages complaint conversations.
type MessageService struct {
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// MessageDependencies bundles collaborators.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewMessageService creates the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
		now:        clockOrNow(deps.Now),
	}
}

// Post appends a message. The timestamp is assigned here, never by the caller.
func (s *MessageService) Post(ctx context.Context, complaintID, name, body string) (*domain.Message, error) {
	complaintID = strings.TrimSpace(complaintID)
	name = strings.TrimSpace(name)
	if complaintID == "" || name == "" || strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("complaintId, name and message are required", nil)
	}

	msg := &domain.Message{
		ComplaintID: complaintID,
		Name:        name,
		Body:        body,
		CreatedAt:   s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventMessagePosted, complaintID, msg.CreatedAt, events.MessagePostedPayload{
		MessageID:   msg.ID,
		Sender:      msg.Name,
		BodyPreview: preview(msg.Body),
	}))
	return msg, nil
}

// ListForComplaint returns the conversation newest first.
func (s *MessageService) ListForComplaint(ctx context.Context, complaintID string) ([]domain.Message, error) {
	msgs, err := s.messages.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}
