package service

import (
	"context"
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

// EscalationService gates escalation on complaint age.
type EscalationService struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	guard      complaintGuard
	logger     *zap.Logger
	dwell      time.Duration
	now        func() time.Time
}

// EscalationDependencies bundles collaborators.
type EscalationDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
	Locker        lock.Locker
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Dwell         time.Duration
	Now           func() time.Time
}

// Eligibility is the outcome of an eligibility check. Complaint is set only when eligible.
type Eligibility struct {
	Eligible       bool
	HoursRemaining int
	Complaint      *domain.Complaint
}

// NewEscalationService creates the service. A non-positive dwell defaults to 24h.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	logger := nopIfNil(deps.Logger)
	dwell := deps.Dwell
	if dwell <= 0 {
		dwell = 24 * time.Hour
	}
	return &EscalationService{
		complaints: deps.ComplaintRepo,
		dispatcher: deps.Dispatcher,
		guard:      complaintGuard{locker: deps.Locker, logger: logger, metrics: deps.Metrics},
		logger:     logger,
		dwell:      dwell,
		now:        clockOrNow(deps.Now),
	}
}

// Dwell returns the minimum complaint age for escalation.
func (s *EscalationService) Dwell() time.Duration { return s.dwell }

// CheckEligibility reports whether the dwell time has elapsed and, if so,
// persists canEscalate=true.
func (s *EscalationService) CheckEligibility(ctx context.Context, complaintID string) (*Eligibility, error) {
	var result *Eligibility
	err := s.guard.run(ctx, complaintID, func(ctx context.Context) error {
		complaint, err := s.complaints.GetByID(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "Complaint", map[string]any{"complaintId": complaintID})
		}

		now := s.now()
		if !complaint.EscalationEligible(now, s.dwell) {
			result = &Eligibility{HoursRemaining: complaint.HoursRemaining(now, s.dwell)}
			return nil
		}

		updated, err := s.complaints.SetCanEscalate(ctx, complaintID, true)
		if err != nil {
			return notFoundOr(err, "Complaint", map[string]any{"complaintId": complaintID})
		}
		result = &Eligibility{Eligible: true, Complaint: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Escalate marks the complaint escalated once it is at least dwell old.
// Each accepted call records its own reason and escalationDate.
func (s *EscalationService) Escalate(ctx context.Context, complaintID, reason string) (*domain.Complaint, error) {
	reason = strings.TrimSpace(reason)

	var escalated *domain.Complaint
	err := s.guard.run(ctx, complaintID, func(ctx context.Context) error {
		complaint, err := s.complaints.GetByID(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "Complaint", map[string]any{"complaintId": complaintID})
		}
		now := s.now()
		if !complaint.EscalationEligible(now, s.dwell) {
			return apperrors.NewPolicyViolation(
				fmt.Sprintf("Complaint can only be escalated after %d hours", int(s.dwell.Hours())),
				map[string]any{"hoursRemaining": complaint.HoursRemaining(now, s.dwell)},
			)
		}

		escalated, err = s.complaints.MarkEscalated(ctx, complaintID, reason, now)
		if err != nil {
			return notFoundOr(err, "Complaint", map[string]any{"complaintId": complaintID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventComplaintEscalated, complaintID, s.now(), events.ComplaintEscalatedPayload{
		Reason: reason,
	}))
	return escalated, nil
}
