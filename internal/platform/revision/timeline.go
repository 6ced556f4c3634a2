package revision

import (
	"sort"
	"time"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

// StatusUnknown is reported when a goal's current status cannot be resolved
// from either the live plan or its history.
const StatusUnknown plandoc.GoalStatus = "UNKNOWN"

// HistoryRecord is one audit-log row as seen by the history projection. The
// goalhistory domain package maps its stored entries into this shape.
type HistoryRecord struct {
	GoalID          string             `json:"goal_id"`
	GoalDescription string             `json:"goal_description"`
	PreviousStatus  plandoc.GoalStatus `json:"previous_status"`
	NewStatus       plandoc.GoalStatus `json:"new_status"`
	ChangedAt       time.Time          `json:"changed_at"`
	ChangedBy       string             `json:"changed_by,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	SessionID       string             `json:"session_id,omitempty"`
}

// GoalTimeline is the per-goal view of the audit log, reconciled with the
// live plan.
type GoalTimeline struct {
	GoalID        string             `json:"goal_id"`
	Description   string             `json:"description"`
	CurrentStatus plandoc.GoalStatus `json:"current_status"`
	History       []HistoryRecord    `json:"history"`
}

// BuildGoalHistory groups the audit log by goal and reconciles each group
// against the live plan. History is the source of truth for what happened;
// the live plan is only consulted for the goal's present status and
// description. Live goals with no history rows still appear, with an empty
// history list, so the timeline covers every goal exactly once. Output is
// ordered by goal id ascending, each group chronologically ascending.
func BuildGoalHistory(plan *plandoc.Document, records []HistoryRecord) []GoalTimeline {
	if plan == nil {
		plan = &plandoc.Document{}
	}

	groups := make(map[string][]HistoryRecord)
	var order []string
	for _, r := range records {
		if _, seen := groups[r.GoalID]; !seen {
			order = append(order, r.GoalID)
		}
		groups[r.GoalID] = append(groups[r.GoalID], r)
	}

	covered := make(map[string]bool, len(plan.ClinicalGoals))
	var timelines []GoalTimeline

	for _, goalID := range order {
		history := groups[goalID]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].ChangedAt.Before(history[j].ChangedAt)
		})
		latest := history[len(history)-1]

		tl := GoalTimeline{
			GoalID:        goalID,
			Description:   latest.GoalDescription,
			CurrentStatus: latest.NewStatus,
			History:       history,
		}
		if tl.CurrentStatus == "" {
			tl.CurrentStatus = StatusUnknown
		}
		if g, ok := plandoc.ResolveGoal(plan.ClinicalGoals, goalID, latest.GoalDescription); ok {
			tl.Description = g.Description
			tl.CurrentStatus = g.Status
			covered[g.ID] = true
		}
		timelines = append(timelines, tl)
	}

	// Live goals the audit log has never touched.
	for _, g := range plan.ClinicalGoals {
		if covered[g.ID] {
			continue
		}
		if _, hasHistory := groups[g.ID]; hasHistory {
			continue
		}
		timelines = append(timelines, GoalTimeline{
			GoalID:        g.ID,
			Description:   g.Description,
			CurrentStatus: g.Status,
			History:       []HistoryRecord{},
		})
	}

	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].GoalID < timelines[j].GoalID
	})
	return timelines
}
