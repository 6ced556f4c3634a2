// Package treatmentplan owns the versioned treatment-plan aggregate: the
// plan row with its denormalized current content, and the append-only
// version history beneath it.
package treatmentplan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangeType records how a plan version came to exist.
type ChangeType string

const (
	ChangeInitial       ChangeType = "INITIAL"
	ChangeSessionUpdate ChangeType = "SESSION_UPDATE"
	ChangeManual        ChangeType = "MANUAL"
)

var validChangeTypes = map[ChangeType]bool{
	ChangeInitial: true, ChangeSessionUpdate: true, ChangeManual: true,
}

// ValidChangeType reports whether t is a known change type.
func ValidChangeType(t ChangeType) bool { return validChangeTypes[t] }

// TreatmentPlan maps to the treatment_plan table. Each patient has at most
// one plan; current_content always mirrors the content of the
// highest-numbered version once any version exists.
type TreatmentPlan struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PatientID      uuid.UUID       `db:"patient_id" json:"patient_id"`
	CurrentContent json.RawMessage `db:"current_content" json:"current_content"`
	LastReviewedAt *time.Time      `db:"last_reviewed_at" json:"last_reviewed_at,omitempty"`
	NextReviewDue  *time.Time      `db:"next_review_due" json:"next_review_due,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// PlanVersion maps to the plan_version table. Versions are append-only and
// contiguous from 1; rows are never edited or deleted.
type PlanVersion struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	PlanID             uuid.UUID       `db:"plan_id" json:"plan_id"`
	Version            int             `db:"version" json:"version"`
	Content            json.RawMessage `db:"content" json:"content"`
	ChangeType         ChangeType      `db:"change_type" json:"change_type"`
	ChangeSummary      string          `db:"change_summary" json:"change_summary"`
	SourceSuggestionID *uuid.UUID      `db:"source_suggestion_id" json:"source_suggestion_id,omitempty"`
	CreatedBy          string          `db:"created_by" json:"created_by"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}
