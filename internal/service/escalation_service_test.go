package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

func TestEscalateRefusedBeforeDwell(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "u1")

	f.clock.Advance(10*time.Hour + 30*time.Minute)
	_, err := f.escalations.Escalate(context.Background(), c.ID, "slow")
	de := requireCode(t, err, apperrors.CodePolicyViolation)
	assert.Equal(t, 400, de.HTTPStatus)
	assert.Equal(t, "Complaint can only be escalated after 24 hours", de.Message)
	assert.Equal(t, 14, de.Details["hoursRemaining"])

	got, err := f.complaints.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, got.Escalated)
	assert.Nil(t, got.EscalationDate)
}

func TestEscalateAcceptedAfterDwell(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "u1")

	f.clock.Advance(24 * time.Hour)
	escalated, err := f.escalations.Escalate(context.Background(), c.ID, "  no response  ")
	require.NoError(t, err)
	assert.True(t, escalated.Escalated)
	assert.Equal(t, "no response", escalated.EscalationReason)
	require.NotNil(t, escalated.EscalationDate)
	assert.True(t, escalated.EscalationDate.Equal(f.clock.Now()))

	// a second escalation records its own reason and date
	f.clock.Advance(time.Hour)
	again, err := f.escalations.Escalate(context.Background(), c.ID, "still waiting")
	require.NoError(t, err)
	assert.True(t, again.Escalated)
	assert.Equal(t, "still waiting", again.EscalationReason)
	require.NotNil(t, again.EscalationDate)
	assert.True(t, again.EscalationDate.Equal(f.clock.Now()))
}

func TestEscalateUnknownComplaint(t *testing.T) {
	_, err := newFixture(t).escalations.Escalate(context.Background(), "ghost", "x")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestCheckEligibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submit(t, "u1")
	_, err := f.store.Complaints().SetCanEscalate(ctx, c.ID, false)
	require.NoError(t, err)

	f.clock.Advance(23*time.Hour + time.Minute)
	result, err := f.escalations.CheckEligibility(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, 1, result.HoursRemaining)
	assert.Nil(t, result.Complaint)

	f.clock.Advance(time.Hour)
	result, err = f.escalations.CheckEligibility(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	require.NotNil(t, result.Complaint)
	assert.True(t, result.Complaint.CanEscalate)

	stored, err := f.complaints.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.CanEscalate)

	_, err = f.escalations.CheckEligibility(ctx, "ghost")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestEscalationDwellDefault(t *testing.T) {
	s := NewEscalationService(EscalationDependencies{})
	assert.Equal(t, 24*time.Hour, s.Dwell())
}
