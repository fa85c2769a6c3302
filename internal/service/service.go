// Package service implements the complaint workflow on top of the repositories.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/civicbridge/complaint-service/internal/events"
	"github.com/civicbridge/complaint-service/internal/lock"
	"github.com/civicbridge/complaint-service/internal/observability"
	"github.com/civicbridge/complaint-service/internal/repository"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

const releaseTimeout = 2 * time.Second

// complaintGuard serializes writers of one complaint when a locker is configured.
type complaintGuard struct {
	locker  lock.Locker
	logger  *zap.Logger
	metrics *observability.Metrics
}

// run executes fn while holding the complaint's lock. A contended lock that
// stays held past the locker's wait budget is a Conflict; any other locker
// failure is logged and fn runs unlocked.
func (g complaintGuard) run(ctx context.Context, complaintID string, fn func(context.Context) error) error {
	if g.locker == nil {
		return fn(ctx)
	}

	release, err := g.locker.Acquire(ctx, complaintID)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		g.metrics.LockOutcome("contended")
		return apperrors.NewConflict("complaint is being updated, retry shortly", map[string]any{"complaintId": complaintID})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case err != nil:
		g.metrics.LockOutcome("fallback")
		g.logger.Warn("complaint lock unavailable; proceeding unlocked",
			zap.String("complaint_id", complaintID), zap.Error(err))
		return fn(ctx)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			g.logger.Warn("failed to release complaint lock",
				zap.String("complaint_id", complaintID), zap.Error(err))
		}
	}()
	return fn(ctx)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

// notFoundOr turns repository.ErrNotFound into a NotFound domain error and maps anything else.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func clockOrNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
