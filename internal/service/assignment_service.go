package service

import (
	"context"
	"errors"
	"sort"
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

// AssignmentService handles complaint-to-agent assignment.
type AssignmentService struct {
	complaints  repository.ComplaintRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
	guard       complaintGuard
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
	Locker         lock.Locker
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            func() time.Time
}

// AssignInput names the complaint and the agent taking it.
type AssignInput struct {
	ComplaintID string
	AgentID     string
	AgentName   string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := nopIfNil(deps.Logger)
	return &AssignmentService{
		complaints:  deps.ComplaintRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
		guard:       complaintGuard{locker: deps.Locker, logger: logger, metrics: deps.Metrics},
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clockOrNow(deps.Now),
	}
}

// Assign marks the complaint as assigned and records the assignment row. The
// row is written even when the complaint could not be updated; there is no
// rollback.
func (s *AssignmentService) Assign(ctx context.Context, input AssignInput) (*domain.AssignedComplaint, error) {
	input.ComplaintID = strings.TrimSpace(input.ComplaintID)
	input.AgentID = strings.TrimSpace(input.AgentID)
	input.AgentName = strings.TrimSpace(input.AgentName)
	if input.ComplaintID == "" || input.AgentID == "" {
		return nil, apperrors.NewValidationError("complaintId and agentId are required", nil)
	}

	var assignment *domain.AssignedComplaint
	err := s.guard.run(ctx, input.ComplaintID, func(ctx context.Context) error {
		status := domain.ComplaintStatusPending
		var completion *time.Time
		if complaint, err := s.complaints.GetByID(ctx, input.ComplaintID); err == nil {
			if complaint.Status != "" {
				status = complaint.Status
			}
			completion = complaint.CompletionTime
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("assign: complaint read failed; mirroring pending",
				zap.String("complaint_id", input.ComplaintID), zap.Error(err))
		}

		if err := s.complaints.MarkAssigned(ctx, input.ComplaintID, input.AgentName); err != nil {
			s.logger.Warn("assign dual write: complaint side failed",
				zap.String("complaint_id", input.ComplaintID),
				zap.String("agent_id", input.AgentID),
				zap.Error(err))
			s.metrics.DualWritePartial("assign", "complaint")
		}

		assignment = &domain.AssignedComplaint{
			ComplaintID:    input.ComplaintID,
			AgentID:        input.AgentID,
			AgentName:      input.AgentName,
			Status:         status,
			CompletionTime: completion,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventComplaintAssigned, input.ComplaintID, s.now(), events.ComplaintAssignedPayload{
		AssignmentID: assignment.ID,
		AgentID:      assignment.AgentID,
		AgentName:    assignment.AgentName,
	}))
	return assignment, nil
}

// ListForAgent joins the agent's assignments with their complaints. Rows whose
// complaint no longer exists are dropped. Open work sorts before completed
// work; within each group the most recent completionTime comes first.
func (s *AssignmentService) ListForAgent(ctx context.Context, agentID string) ([]domain.AssignmentDetail, error) {
	rows, err := s.assignments.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID, err := s.complaintsFor(ctx, rows)
	if err != nil {
		return nil, err
	}

	details := make([]domain.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		complaint, ok := byID[row.ComplaintID]
		if !ok {
			continue
		}
		details = append(details, domain.AssignmentDetail{
			Assignment:     row,
			Complaint:      complaint,
			CompletionTime: complaint.CompletionTime,
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		ci := details[i].Assignment.Status == domain.ComplaintStatusCompleted
		cj := details[j].Assignment.Status == domain.ComplaintStatusCompleted
		if ci != cj {
			return !ci
		}
		return completionOrZero(details[i].CompletionTime).After(completionOrZero(details[j].CompletionTime))
	})
	return details, nil
}

// ListAll returns every assignment with its complaint. Complaint is nil for dangling rows.
func (s *AssignmentService) ListAll(ctx context.Context) ([]domain.AssignmentDetail, error) {
	rows, err := s.assignments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID, err := s.complaintsFor(ctx, rows)
	if err != nil {
		return nil, err
	}

	details := make([]domain.AssignmentDetail, 0, len(rows))
	for _, row := range rows {
		detail := domain.AssignmentDetail{Assignment: row, CompletionTime: row.CompletionTime}
		if complaint, ok := byID[row.ComplaintID]; ok {
			detail.Complaint = complaint
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *AssignmentService) complaintsFor(ctx context.Context, rows []domain.AssignedComplaint) (map[string]*domain.Complaint, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ComplaintID)
	}
	complaints, err := s.complaints.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]*domain.Complaint, len(complaints))
	for i := range complaints {
		byID[complaints[i].ID] = &complaints[i]
	}
	return byID, nil
}

func completionOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0)
	}
	return *t
}
