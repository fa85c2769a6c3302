package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &domain.User{Name: "Asha", Email: "asha@example.com", Role: domain.RoleAgent, District: strPtr("Sira")}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// mutating the copy does not reach the store
	*got.District = "Gubbi"
	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sira", *again.District)

	err = users.Create(ctx, &domain.User{Name: "Other", Email: "asha@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUsersListFilters(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &domain.User{Email: "a@x", Role: domain.RoleAgent, District: strPtr("Sira")}))
	require.NoError(t, users.Create(ctx, &domain.User{Email: "b@x", Role: domain.RoleOrdinary, District: strPtr("Sira")}))
	require.NoError(t, users.Create(ctx, &domain.User{Email: "c@x", Role: domain.RoleAgent}))

	agent := domain.RoleAgent
	agents, err := users.List(ctx, repository.UserFilter{Role: &agent})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "a@x", agents[0].Email)
	assert.Equal(t, "c@x", agents[1].Email)

	sira, err := users.List(ctx, repository.UserFilter{District: strPtr("Sira")})
	require.NoError(t, err)
	assert.Len(t, sira, 2)

	none, err := users.List(ctx, repository.UserFilter{District: strPtr("Pavagada")})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUsersUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	a := &domain.User{Email: "a@x"}
	b := &domain.User{Email: "b@x"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	b.Email = "a@x"
	assert.ErrorIs(t, users.Update(ctx, b), repository.ErrDuplicate)

	b.Email = "b2@x"
	b.Name = "Bee"
	require.NoError(t, users.Update(ctx, b))
	got, err := users.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bee", got.Name)

	assert.ErrorIs(t, users.Update(ctx, &domain.User{ID: "missing"}), repository.ErrNotFound)

	require.NoError(t, users.Delete(ctx, a.ID))
	assert.ErrorIs(t, users.Delete(ctx, a.ID), repository.ErrNotFound)
}

func TestComplaintsNewestFirst(t *testing.T) {
	ctx := context.Background()
	complaints := NewStore().Complaints()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &domain.Complaint{UserID: "u1", CreatedAt: base}
	newer := &domain.Complaint{UserID: "u1", CreatedAt: base.Add(time.Hour)}
	other := &domain.Complaint{UserID: "u2", CreatedAt: base.Add(30 * time.Minute)}
	for _, c := range []*domain.Complaint{older, newer, other} {
		require.NoError(t, complaints.Create(ctx, c))
	}

	all, err := complaints.List(ctx, repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{newer.ID, other.ID, older.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := complaints.List(ctx, repository.ComplaintFilter{UserID: strPtr("u1")})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, []string{}, mine[0].Images)

	subset, err := complaints.ListByIDs(ctx, []string{older.ID, "ghost", older.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, subset, 2)
	assert.Equal(t, other.ID, subset[0].ID)
}

func TestComplaintMutations(t *testing.T) {
	ctx := context.Background()
	complaints := NewStore().Complaints()

	c := &domain.Complaint{UserID: "u1", Status: domain.ComplaintStatusPending, Images: []string{"/uploads/a.png"}}
	require.NoError(t, complaints.Create(ctx, c))

	done := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	updated, err := complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusCompleted, &done)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletionTime)

	// a later status change without a completion time keeps the old one
	updated, err = complaints.UpdateStatus(ctx, c.ID, domain.ComplaintStatusInProgress, nil)
	require.NoError(t, err)
	assert.True(t, updated.CompletionTime.Equal(done))

	require.NoError(t, complaints.MarkAssigned(ctx, c.ID, "Ravi"))
	got, err := complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Assigned)
	assert.Equal(t, "Ravi", got.AgentName)

	flagged, err := complaints.SetCanEscalate(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, flagged.CanEscalate)

	escalated, err := complaints.MarkEscalated(ctx, c.ID, "no response", done)
	require.NoError(t, err)
	assert.True(t, escalated.Escalated)
	assert.Equal(t, "no response", escalated.EscalationReason)

	_, err = complaints.UpdateStatus(ctx, "ghost", domain.ComplaintStatusPending, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, complaints.MarkAssigned(ctx, "ghost", "x"), repository.ErrNotFound)
}

func TestComplaintsDeleteByUser(t *testing.T) {
	ctx := context.Background()
	complaints := NewStore().Complaints()
	for _, uid := range []string{"u1", "u1", "u2"} {
		require.NoError(t, complaints.Create(ctx, &domain.Complaint{UserID: uid}))
	}

	n, err := complaints.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := complaints.List(ctx, repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "u2", left[0].UserID)
}

func TestAssignmentsUpdateAllRowsForComplaint(t *testing.T) {
	ctx := context.Background()
	assignments := NewStore().Assignments()

	require.NoError(t, assignments.Create(ctx, &domain.AssignedComplaint{ComplaintID: "c1", AgentID: "a1"}))
	require.NoError(t, assignments.Create(ctx, &domain.AssignedComplaint{ComplaintID: "c1", AgentID: "a2"}))
	require.NoError(t, assignments.Create(ctx, &domain.AssignedComplaint{ComplaintID: "c2", AgentID: "a1"}))

	n, err := assignments.UpdateStatusByComplaint(ctx, "c1", domain.ComplaintStatusInProgress, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	mine, err := assignments.ListByAgent(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c1", mine[0].ComplaintID)
	assert.Equal(t, domain.ComplaintStatusInProgress, mine[0].Status)
	assert.Empty(t, mine[1].Status)

	n, err = assignments.UpdateStatusByComplaint(ctx, "ghost", domain.ComplaintStatusCompleted, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = assignments.DeleteByAgent(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := assignments.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a2", all[0].AgentID)
}

func TestMessagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	messages := NewStore().Messages()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, messages.Create(ctx, &domain.Message{ComplaintID: "c1", Name: "Asha", Body: "first", CreatedAt: base}))
	require.NoError(t, messages.Create(ctx, &domain.Message{ComplaintID: "c1", Name: "Ravi", Body: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, messages.Create(ctx, &domain.Message{ComplaintID: "c2", Name: "Asha", Body: "elsewhere", CreatedAt: base}))

	got, err := messages.ListByComplaint(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Body)
	assert.Equal(t, "first", got[1].Body)

	empty, err := messages.ListByComplaint(ctx, "c9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
