// Package repository defines the four persisted collections and their
// PostgreSQL implementations. The memory sub-package provides an in-process
// implementation used when no database is configured and in tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/civicbridge/complaint-service/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserFilter selects users by field match. Nil fields are ignored.
type UserFilter struct {
	Role     *domain.Role
	District *string
}

// ComplaintFilter selects complaints by field match. Nil fields are ignored.
type ComplaintFilter struct {
	UserID    *string
	Escalated *bool
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// ComplaintRepository persists complaints. List results are newest-created first.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, completionTime *time.Time) (*domain.Complaint, error)
	MarkAssigned(ctx context.Context, id, agentName string) error
	SetCanEscalate(ctx context.Context, id string, canEscalate bool) (*domain.Complaint, error)
	MarkEscalated(ctx context.Context, id, reason string, at time.Time) (*domain.Complaint, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// AssignmentRepository persists complaint-to-agent links. List results are oldest first.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.AssignedComplaint) error
	List(ctx context.Context) ([]domain.AssignedComplaint, error)
	ListByAgent(ctx context.Context, agentID string) ([]domain.AssignedComplaint, error)
	UpdateStatusByComplaint(ctx context.Context, complaintID string, status domain.ComplaintStatus, completionTime *time.Time) (int64, error)
	DeleteByAgent(ctx context.Context, agentID string) (int64, error)
}

// MessageRepository persists the append-only conversation log.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Message, error)
}
