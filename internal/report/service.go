package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/notify"
	"github.com/datum-redsoft/expense-reports/internal/reqstate"
)

// BackendAPI is the slice of the remote gateway this service consumes.
type BackendAPI interface {
	ListCardExpenses(ctx context.Context, cardID int64) ([]expense.Group, error)
	ApproveExpenseGroup(ctx context.Context, cardID int64, monthYear string) error
}

// SnapshotStore persists the last fetched list per card for offline display.
type SnapshotStore interface {
	Save(cardID int64, groups []expense.Group) error
	Load(cardID int64) ([]expense.Group, time.Time, error)
}

// Service implements the report listing and approval workflows on top of the
// gateway and the pure engine.
type Service struct {
	api    BackendAPI
	snap   SnapshotStore
	guard  *reqstate.Guard
	bus    *notify.Bus
	logger *slog.Logger
}

// NewService creates a report service. snap and bus may be nil; snapshotting
// and notifications are then skipped.
func NewService(api BackendAPI, snap SnapshotStore, bus *notify.Bus, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		snap:   snap,
		guard:  reqstate.NewGuard(),
		bus:    bus,
		logger: logger,
	}
}

// ListReports fetches the card's expense groups and applies the display
// filter. The unfiltered list is snapshotted whole, matching the "refetch the
// whole list" lifecycle.
func (s *Service) ListReports(ctx context.Context, cardID int64, f Filter) ([]expense.Group, error) {
	groups, err := s.api.ListCardExpenses(ctx, cardID)
	if err != nil {
		s.logger.Error("failed to fetch card expenses", "card_id", cardID, "error", err)
		return nil, err
	}

	if s.snap != nil {
		if err := s.snap.Save(cardID, groups); err != nil {
			// snapshot is a convenience, a failed save never fails the listing
			s.logger.Warn("failed to snapshot expense groups", "card_id", cardID, "error", err)
		}
	}

	return Apply(groups, f), nil
}

// OfflineReports serves the last snapshot when the backend is unreachable.
func (s *Service) OfflineReports(cardID int64, f Filter) ([]expense.Group, time.Time, error) {
	if s.snap == nil {
		return nil, time.Time{}, internal.NewNotFoundError("snapshot store disabled", internal.ErrCodeReportNotFound)
	}
	groups, fetchedAt, err := s.snap.Load(cardID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return Apply(groups, f), fetchedAt, nil
}

// GroupDetail returns the group with the exact month label plus its category
// aggregates for the detail chart.
func (s *Service) GroupDetail(ctx context.Context, cardID int64, month string) (*expense.Group, []CategoryAggregate, error) {
	groups, err := s.api.ListCardExpenses(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}
	for _, group := range groups {
		if group.Month == month {
			return &group, AggregateByCategory(group.Expenses), nil
		}
	}
	return nil, nil, internal.NewNotFoundError(
		fmt.Sprintf("no expense group %q for card %d", month, cardID),
		internal.ErrCodeReportNotFound)
}

// Approve approves the group keyed by card and exact month label. A duplicate
// trigger while an approval for the same group is outstanding is a no-op
// (reported as a conflict); retry after failure is always user-triggered.
// After the backend confirms, the list is re-fetched before success is
// reported so the caller never observes stale approval state.
func (s *Service) Approve(ctx context.Context, cardID int64, month string) ([]expense.Group, error) {
	key := approvalKey(cardID, month)
	if !s.guard.TryStart(key) {
		s.logger.Warn("approval already in flight", "card_id", cardID, "month", month)
		return nil, internal.NewConflictError("approval already in progress for this report", internal.ErrCodeApprovalInFlight)
	}

	err := s.api.ApproveExpenseGroup(ctx, cardID, month)
	s.guard.Finish(key, err)
	if err != nil {
		s.logger.Error("approval failed", "card_id", cardID, "month", month, "error", err)
		s.publish(notify.TypeError, fmt.Sprintf("No se pudo aprobar el reporte de %s", month))
		return nil, err
	}

	s.logger.Info("expense group approved", "card_id", cardID, "month", month)
	s.publish(notify.TypeSuccess, fmt.Sprintf("Reporte de %s aprobado exitosamente", month))

	groups, err := s.api.ListCardExpenses(ctx, cardID)
	if err != nil {
		// approval went through, only the refresh failed
		s.logger.Warn("post-approval refresh failed", "card_id", cardID, "error", err)
		return nil, err
	}
	if s.snap != nil {
		if err := s.snap.Save(cardID, groups); err != nil {
			s.logger.Warn("failed to snapshot expense groups", "card_id", cardID, "error", err)
		}
	}
	return groups, nil
}

// ApprovalState exposes the guard state for one card+month, e.g. to disable
// the approve control while a request is outstanding.
func (s *Service) ApprovalState(cardID int64, month string) reqstate.State {
	return s.guard.State(approvalKey(cardID, month))
}

func (s *Service) publish(kind notify.Type, message string) {
	if s.bus != nil {
		s.bus.Publish(kind, message)
	}
}

func approvalKey(cardID int64, month string) string {
	return fmt.Sprintf("approve:%d:%s", cardID, month)
}
