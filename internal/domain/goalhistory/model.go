// Package goalhistory records every clinical goal status transition as an
// append-only audit trail, and projects it into per-goal timelines.
package goalhistory

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the goal_history table. Rows are append-only: transitions
// are never edited or deleted once written.
type Entry struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PlanID          uuid.UUID  `db:"plan_id" json:"plan_id"`
	GoalID          string     `db:"goal_id" json:"goal_id"`
	GoalDescription string     `db:"goal_description" json:"goal_description"`
	PreviousStatus  string     `db:"previous_status" json:"previous_status"`
	NewStatus       string     `db:"new_status" json:"new_status"`
	ChangedAt       time.Time  `db:"changed_at" json:"changed_at"`
	ChangedBy       string     `db:"changed_by" json:"changed_by"`
	Reason          string     `db:"reason" json:"reason,omitempty"`
	SessionID       *uuid.UUID `db:"session_id" json:"session_id,omitempty"`
}
