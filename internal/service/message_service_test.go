package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbridge/complaint-service/internal/events"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

func TestPostAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var previews []string
	f.dispatcher.Subscribe(events.EventMessagePosted, func(_ context.Context, e events.Event) error {
		previews = append(previews, e.Payload.(events.MessagePostedPayload).BodyPreview)
		return nil
	})

	first, err := f.messages.Post(ctx, "c1", "Asha", "when will this be fixed?")
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(f.clock.Now()))

	f.clock.Advance(time.Minute)
	_, err = f.messages.Post(ctx, "c1", "Ravi", strings.Repeat("a", 100))
	require.NoError(t, err)
	_, err = f.messages.Post(ctx, "c2", "Asha", "other thread")
	require.NoError(t, err)

	msgs, err := f.messages.ListForComplaint(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ravi", msgs[0].Name)
	assert.Equal(t, "Asha", msgs[1].Name)

	require.Len(t, previews, 3)
	assert.Len(t, previews[1], previewLength+3)
}

func TestPostRequiresFields(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ complaint, name, body string }{
		{"", "Asha", "hi"},
		{"c1", " ", "hi"},
		{"c1", "Asha", "  "},
	} {
		_, err := f.messages.Post(context.Background(), tc.complaint, tc.name, tc.body)
		requireCode(t, err, apperrors.CodeValidation)
	}
}
