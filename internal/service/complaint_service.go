package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/lock"
	"github.com/civicbridge/complaint-service/internal/observability"
	"github.com/civicbridge/complaint-service/internal/repository"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	guard       complaintGuard
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// ComplaintDependencies bundles repositories for complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Locker         lock.Locker
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            func() time.Time
}

// ComplaintSubmitInput describes complaint filing payload. Images are stored blob references.
type ComplaintSubmitInput struct {
	Name       string
	Address    string
	Pincode    string
	Taluk      string
	WardNo     string
	Department string
	District   string
	Comment    string
	Images     []string
}

// StatusUpdateResult reports which side of the dual write applied.
// Complaint is nil when only assignment rows existed.
type StatusUpdateResult struct {
	Complaint          *domain.Complaint
	AssignmentsUpdated int64
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := nopIfNil(deps.Logger)
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		guard:       complaintGuard{locker: deps.Locker, logger: logger, metrics: deps.Metrics},
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clockOrNow(deps.Now),
	}
}

// Submit files a new complaint in the pending state.
func (s *ComplaintService) Submit(ctx context.Context, userID string, input ComplaintSubmitInput) (*domain.Complaint, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}

	images := append([]string{}, input.Images...)
	complaint := &domain.Complaint{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		Pincode:     strings.TrimSpace(input.Pincode),
		Taluk:       strings.TrimSpace(input.Taluk),
		WardNo:      strings.TrimSpace(input.WardNo),
		Department:  strings.TrimSpace(input.Department),
		District:    strings.TrimSpace(input.District),
		Comment:     strings.TrimSpace(input.Comment),
		Images:      images,
		Status:      domain.ComplaintStatusPending,
		Assigned:    false,
		AgentName:   "",
		CanEscalate: true,
		Escalated:   false,
		CreatedAt:   s.now(),
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventComplaintSubmitted, complaint.ID, s.now(), events.ComplaintSubmittedPayload{
		UserID:     complaint.UserID,
		Department: complaint.Department,
		District:   complaint.District,
		ImageCount: len(complaint.Images),
	}))
	return complaint, nil
}

// SetStatus writes status (and completionTime when given) to the complaint and
// to every assignment row for it. The two writes are independent; the call
// succeeds when either side applied.
func (s *ComplaintService) SetStatus(ctx context.Context, complaintID, status string, completionTime *time.Time) (*StatusUpdateResult, error) {
	complaintID = strings.TrimSpace(complaintID)
	status = strings.TrimSpace(status)
	if complaintID == "" || status == "" {
		return nil, apperrors.NewValidationError("Missing complaintId or status", nil)
	}
	if len(status) > domain.MaxStatusLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("status must be at most %d characters", domain.MaxStatusLength),
			map[string]any{"status": status},
		)
	}

	var result *StatusUpdateResult
	err := s.guard.run(ctx, complaintID, func(ctx context.Context) error {
		var err error
		result, err = s.applyStatus(ctx, complaintID, domain.ComplaintStatus(status), completionTime)
		return err
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventComplaintStatusChanged, complaintID, s.now(), events.ComplaintStatusChangedPayload{
		Status:            domain.ComplaintStatus(status),
		ComplaintUpdated:  result.Complaint != nil,
		AssignmentsUpdate: result.AssignmentsUpdated,
	}))
	return result, nil
}

func (s *ComplaintService) applyStatus(ctx context.Context, complaintID string, status domain.ComplaintStatus, completionTime *time.Time) (*StatusUpdateResult, error) {
	complaint, complaintErr := s.complaints.UpdateStatus(ctx, complaintID, status, completionTime)
	updated, assignErr := s.assignments.UpdateStatusByComplaint(ctx, complaintID, status, completionTime)

	complaintMissing := errors.Is(complaintErr, repository.ErrNotFound)
	if complaintErr != nil && !complaintMissing {
		s.logger.Warn("status dual write: complaint side failed",
			zap.String("complaint_id", complaintID), zap.Error(complaintErr))
		s.metrics.DualWritePartial("set_status", "complaint")
	}
	if assignErr != nil {
		s.logger.Warn("status dual write: assignment side failed",
			zap.String("complaint_id", complaintID), zap.Error(assignErr))
		s.metrics.DualWritePartial("set_status", "assignment")
	}

	complaintApplied := complaintErr == nil
	assignmentsApplied := assignErr == nil && updated > 0
	if !complaintApplied && !assignmentsApplied {
		if complaintMissing && assignErr == nil {
			return nil, apperrors.NewNotFound("Complaint", map[string]any{"complaintId": complaintID})
		}
		return nil, apperrors.NewInternalError(errors.Join(complaintErr, assignErr))
	}

	if !complaintApplied {
		complaint = nil
	}
	if assignErr != nil {
		updated = 0
	}
	return &StatusUpdateResult{Complaint: complaint, AssignmentsUpdated: updated}, nil
}

// Get returns a single complaint.
func (s *ComplaintService) Get(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "Complaint", map[string]any{"complaintId": complaintID})
	}
	return complaint, nil
}

// ListForUser returns the complaints a user filed, newest first.
func (s *ComplaintService) ListForUser(ctx context.Context, userID string) ([]domain.Complaint, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "User", map[string]any{"userId": userID})
	}
	complaints, err := s.complaints.List(ctx, repository.ComplaintFilter{UserID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// ListAll returns escalated complaints first, each partition newest first.
func (s *ComplaintService) ListAll(ctx context.Context) ([]domain.Complaint, error) {
	escalated, notEscalated := true, false
	first, err := s.complaints.List(ctx, repository.ComplaintFilter{Escalated: &escalated})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rest, err := s.complaints.List(ctx, repository.ComplaintFilter{Escalated: &notEscalated})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return append(first, rest...), nil
}

// ListAllUnsorted returns every complaint, newest first, with no escalation partitioning.
func (s *ComplaintService) ListAllUnsorted(ctx context.Context) ([]domain.Complaint, error) {
	complaints, err := s.complaints.List(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}
