package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyMatchingSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventComplaintSubmitted, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintSubmitted, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventMessagePosted, func(context.Context, Event) error {
		got = append(got, "message")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventComplaintSubmitted, "c1", time.Now(), nil)))
	assert.Equal(t, []string{"first:c1", "second:c1"}, got)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	called := false

	d.Subscribe(EventComplaintEscalated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventComplaintEscalated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventComplaintEscalated, "c1", time.Now(), nil))
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}

func TestNewAssignsDistinctIDs(t *testing.T) {
	a := New(EventComplaintAssigned, "c1", time.Now(), ComplaintAssignedPayload{AgentID: "a1"})
	b := New(EventComplaintAssigned, "c1", time.Now(), nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "a1", a.Payload.(ComplaintAssignedPayload).AgentID)
}
