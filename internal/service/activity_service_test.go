package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/observability"
)

func TestActivityServiceLogsEveryEventType(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewActivityService(dispatcher, zap.New(core), observability.NewMetrics()).RegisterHandlers()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventComplaintSubmitted, "c1", now, events.ComplaintSubmittedPayload{Department: "Water"})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventComplaintStatusChanged, "c1", now, events.ComplaintStatusChangedPayload{Status: "awaiting parts"})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventComplaintAssigned, "c1", now, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventComplaintEscalated, "c1", now, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventMessagePosted, "c1", now, nil)))

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"ComplaintSubmitted",
		"ComplaintStatusChanged",
		"ComplaintAssigned",
		"ComplaintEscalated",
		"MessagePosted",
	}, messages)
}

func TestActivityServiceHandlesAllEventTypes(t *testing.T) {
	handlers := NewActivityService(nil, nil, nil).handlers()
	assert.Len(t, handlers, len(events.AllEventTypes))
	for _, eventType := range events.AllEventTypes {
		assert.Contains(t, handlers, eventType)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "completed", statusLabel(domain.ComplaintStatusCompleted))
	assert.Equal(t, "other", statusLabel("awaiting parts"))
}
