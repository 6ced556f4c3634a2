package suggestion

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a suggestion. PENDING is the only state
// that accepts a review decision; the other three are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	// StatusModified is an approval where the reviewer replaced one or
	// more change-set fields before applying.
	StatusModified Status = "MODIFIED"
	StatusRejected Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusModified: true,
	StatusRejected: true,
}

func ValidStatus(s Status) bool { return validStatuses[s] }

// Suggestion is a system-generated revision proposal awaiting therapist
// review. SuggestedChanges holds the change-set exactly as frozen at
// creation time; approval applies that frozen payload, not a re-derived
// one, so the reviewer decides on what they actually saw.
type Suggestion struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	PlanID           uuid.UUID       `db:"plan_id" json:"plan_id"`
	SessionID        uuid.UUID       `db:"session_id" json:"session_id"`
	Status           Status          `db:"status" json:"status"`
	SuggestedChanges json.RawMessage `db:"suggested_changes" json:"suggested_changes"`
	SessionSummary   string          `db:"session_summary" json:"session_summary,omitempty"`
	ProgressNotes    string          `db:"progress_notes" json:"progress_notes,omitempty"`
	ReviewedAt       *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy       *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	TherapistNotes   *string         `db:"therapist_notes" json:"therapist_notes,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}
