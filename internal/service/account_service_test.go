package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbridge/complaint-service/internal/domain"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestSignUpHashesAndRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.accounts.SignUp(ctx, SignUpInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "pw123",
		UserType: "Agent",
		District: strPtr(" Sira "),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, user.Role)
	assert.NotEqual(t, "pw123", user.PasswordHash)
	assert.Equal(t, "Sira", *user.District)

	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "asha@example.com", Password: "other"})
	de := requireCode(t, err, apperrors.CodeEmailExists)
	assert.Equal(t, 409, de.HTTPStatus)
}

func TestSignUpRoleRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.accounts.SignUp(ctx, SignUpInput{Email: "o@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrdinary, user.Role)

	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "x@example.com", Password: "pw", UserType: "Admin"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "y@example.com", Password: "pw", UserType: "Mayor"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "", Password: "pw"})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin, err := f.accounts.Login(ctx, "admin@gmail.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.AdminUserID, admin.ID)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Admin", admin.Name)

	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "asha@example.com", Password: "pw123"})
	require.NoError(t, err)

	user, err := f.accounts.Login(ctx, "asha@example.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)

	_, err = f.accounts.Login(ctx, "asha@example.com", "nope")
	de := requireCode(t, err, apperrors.CodeUnauthorized)
	assert.Equal(t, "Invalid Credentials", de.Message)

	_, err = f.accounts.Login(ctx, "ghost@example.com", "pw123")
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.accounts.Login(ctx, "admin@gmail.com", "wrong")
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestLoginAcceptsLegacyPlaintextRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Users().Create(ctx, &domain.User{Email: "old@example.com", PasswordHash: "legacy", Role: domain.RoleOrdinary}))

	user, err := f.accounts.Login(ctx, "old@example.com", "legacy")
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", user.Email)
}

func TestEmailExists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.accounts.SignUp(ctx, SignUpInput{Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)

	exists, err := f.accounts.EmailExists(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.accounts.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.accounts.EmailExists(ctx, "")
	requireCode(t, err, apperrors.CodeValidation)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, err := f.accounts.SignUp(ctx, SignUpInput{Name: "A", Email: "a@example.com", Password: "pw", Phone: "111"})
	require.NoError(t, err)
	_, err = f.accounts.SignUp(ctx, SignUpInput{Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = f.accounts.UpdateProfile(ctx, a.ID, ProfileUpdate{Email: strPtr("b@example.com")})
	requireCode(t, err, apperrors.CodeEmailExists)

	// keeping one's own email is not a conflict
	updated, err := f.accounts.UpdateProfile(ctx, a.ID, ProfileUpdate{
		Email:      strPtr("a@example.com"),
		Name:       strPtr("Asha"),
		Department: strPtr("Water"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "111", updated.Phone)
	assert.Equal(t, "Water", *updated.Department)

	_, err = f.accounts.UpdateProfile(ctx, "ghost", ProfileUpdate{Name: strPtr("x")})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	citizen, err := f.accounts.SignUp(ctx, SignUpInput{Email: "c@example.com", Password: "pw"})
	require.NoError(t, err)
	agent, err := f.accounts.SignUp(ctx, SignUpInput{Email: "g@example.com", Password: "pw", UserType: "Agent"})
	require.NoError(t, err)

	c1 := f.submit(t, citizen.ID)
	f.submit(t, citizen.ID)
	keep := f.submit(t, "other")
	_, err = f.assignments.Assign(ctx, AssignInput{ComplaintID: c1.ID, AgentID: agent.ID, AgentName: "G"})
	require.NoError(t, err)
	_, err = f.assignments.Assign(ctx, AssignInput{ComplaintID: keep.ID, AgentID: agent.ID, AgentName: "G"})
	require.NoError(t, err)

	agentRole := domain.RoleAgent
	_, err = f.accounts.DeleteUser(ctx, citizen.ID, &agentRole)
	de := requireCode(t, err, apperrors.CodeNotFound)
	assert.Equal(t, "Agent not found", de.Message)

	result, err := f.accounts.DeleteUser(ctx, citizen.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.ComplaintsDeleted)

	left, err := f.complaints.ListAllUnsorted(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)

	result, err = f.accounts.DeleteUser(ctx, agent.ID, &agentRole)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.AssignmentsDeleted)

	rows, err := f.store.Assignments().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.accounts.DeleteUser(ctx, agent.ID, nil)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDirectoryReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	agents, err := f.accounts.ListByRole(ctx, domain.RoleAgent)
	require.NoError(t, err)
	assert.NotNil(t, agents)
	assert.Empty(t, agents)

	agent, err := f.accounts.SignUp(ctx, SignUpInput{Email: "g@example.com", Password: "pw", UserType: "Agent", District: strPtr("Sira")})
	require.NoError(t, err)
	citizen, err := f.accounts.SignUp(ctx, SignUpInput{Email: "c@example.com", Password: "pw", District: strPtr("Sira")})
	require.NoError(t, err)

	agents, err = f.accounts.ListByRole(ctx, domain.RoleAgent)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, agent.ID, agents[0].ID)

	got, err := f.accounts.GetAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.Email, got.Email)

	_, err = f.accounts.GetAgent(ctx, citizen.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	sira, err := f.accounts.ListByDistrict(ctx, "Sira")
	require.NoError(t, err)
	assert.Len(t, sira, 2)

	assert.Equal(t, []string{"Sira", "Gubbi"}, f.accounts.Districts())
}
