package goalhistory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/revision"
)

// PlanSource supplies the live plan content the timeline is reconciled
// against. The cmd wiring adapts the treatment-plan repository to this
// interface so this package does not depend on that domain.
type PlanSource interface {
	PlanContent(ctx context.Context, planID uuid.UUID) ([]byte, error)
}

type Service struct {
	entries Repository
	plans   PlanSource
	log     zerolog.Logger
}

func NewService(entries Repository, plans PlanSource, log zerolog.Logger) *Service {
	return &Service{entries: entries, plans: plans, log: log}
}

// ListByPlan returns the raw audit trail for a plan in chronological order.
func (s *Service) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Entry, error) {
	return s.entries.ListByPlan(ctx, planID)
}

// ListByGoal returns the transitions of a single goal in chronological order.
func (s *Service) ListByGoal(ctx context.Context, planID uuid.UUID, goalID string) ([]*Entry, error) {
	return s.entries.ListByGoal(ctx, planID, goalID)
}

// Timeline groups a plan's audit trail per goal and reconciles each group
// against the live plan content. A plan whose content fails to parse still
// yields a timeline: the projection falls back to history-only resolution.
func (s *Service) Timeline(ctx context.Context, planID uuid.UUID) ([]revision.GoalTimeline, error) {
	entries, err := s.entries.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("list goal history: %w", err)
	}

	var doc *plandoc.Document
	raw, err := s.plans.PlanContent(ctx, planID)
	if err != nil {
		return nil, err
	}
	doc, err = plandoc.Parse(raw)
	if err != nil {
		// Fail-soft read: an unparseable plan must not hide the audit trail.
		s.log.Warn().Err(err).Str("plan_id", planID.String()).
			Msg("plan content unparseable, building timeline from history only")
		doc = nil
	}

	records := make([]revision.HistoryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, toRecord(e))
	}
	return revision.BuildGoalHistory(doc, records), nil
}

func toRecord(e *Entry) revision.HistoryRecord {
	r := revision.HistoryRecord{
		GoalID:          e.GoalID,
		GoalDescription: e.GoalDescription,
		PreviousStatus:  plandoc.GoalStatus(e.PreviousStatus),
		NewStatus:       plandoc.GoalStatus(e.NewStatus),
		ChangedAt:       e.ChangedAt,
		ChangedBy:       e.ChangedBy,
		Reason:          e.Reason,
	}
	if e.SessionID != nil {
		r.SessionID = e.SessionID.String()
	}
	return r
}
