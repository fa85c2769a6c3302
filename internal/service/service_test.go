package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicbridge/complaint-service/internal/config"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/lock"
	"github.com/civicbridge/complaint-service/internal/observability"
	"github.com/civicbridge/complaint-service/internal/repository"
	"github.com/civicbridge/complaint-service/internal/repository/memory"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store       *memory.Store
	clock       *testClock
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	complaints  *ComplaintService
	assignments *AssignmentService
	escalations *EscalationService
	messages    *MessageService
	accounts    *AccountService
}

type fixtureOption func(*fixtureDeps)

type fixtureDeps struct {
	locker         lock.Locker
	assignmentRepo repository.AssignmentRepository
}

func withLocker(l lock.Locker) fixtureOption {
	return func(d *fixtureDeps) { d.locker = l }
}

func withAssignmentRepo(r repository.AssignmentRepository) fixtureOption {
	return func(d *fixtureDeps) { d.assignmentRepo = r }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	deps := fixtureDeps{assignmentRepo: store.Assignments()}
	for _, opt := range opts {
		opt(&deps)
	}

	cfg := config.Config{
		Auth: config.AuthConfig{
			BcryptCost:    bcrypt.MinCost,
			AdminEmail:    "admin@gmail.com",
			AdminPassword: "admin",
		},
		Districts: []string{"Sira", "Gubbi"},
	}

	return &fixture{
		store:      store,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    metrics,
		complaints: NewComplaintService(ComplaintDependencies{
			ComplaintRepo:  store.Complaints(),
			AssignmentRepo: deps.assignmentRepo,
			UserRepo:       store.Users(),
			Dispatcher:     dispatcher,
			Locker:         deps.locker,
			Metrics:        metrics,
			Now:            clock.Now,
		}),
		assignments: NewAssignmentService(AssignmentDependencies{
			ComplaintRepo:  store.Complaints(),
			AssignmentRepo: deps.assignmentRepo,
			Dispatcher:     dispatcher,
			Locker:         deps.locker,
			Metrics:        metrics,
			Now:            clock.Now,
		}),
		escalations: NewEscalationService(EscalationDependencies{
			ComplaintRepo: store.Complaints(),
			Dispatcher:    dispatcher,
			Locker:        deps.locker,
			Metrics:       metrics,
			Dwell:         24 * time.Hour,
			Now:           clock.Now,
		}),
		messages: NewMessageService(MessageDependencies{
			MessageRepo: store.Messages(),
			Dispatcher:  dispatcher,
			Now:         clock.Now,
		}),
		accounts: NewAccountService(cfg, AccountDependencies{
			UserRepo:       store.Users(),
			ComplaintRepo:  store.Complaints(),
			AssignmentRepo: deps.assignmentRepo,
			Metrics:        metrics,
		}),
	}
}

func (f *fixture) submit(t *testing.T, userID string) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(context.Background(), userID, ComplaintSubmitInput{
		Name:       "Asha",
		Department: "Water",
		District:   "Sira",
		Comment:    "pipe burst",
	})
	require.NoError(t, err)
	return c
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, code, de.Code)
	return de
}

// failingAssignments wraps a repository and fails status updates.
type failingAssignments struct {
	repository.AssignmentRepository
	err error
}

func (f failingAssignments) UpdateStatusByComplaint(context.Context, string, domain.ComplaintStatus, *time.Time) (int64, error) {
	return 0, f.err
}

type stubLocker struct {
	err      error
	acquired int
	released int
}

func (s *stubLocker) Acquire(context.Context, string) (lock.Release, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	return func(context.Context) error {
		s.released++
		return nil
	}, nil
}
