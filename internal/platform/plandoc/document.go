// Package plandoc defines the structured treatment-plan document: the
// versionable clinical content (risk assessment, goals, interventions,
// notes, homework) that the revision engine snapshots, merges and diffs.
// The document was historically a loosely-typed JSON blob; it is modeled
// here as an explicit schema-tagged type so shape changes are visible.
package plandoc

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the current plan document schema version. Documents
// written by this engine always carry it; documents with a missing tag are
// treated as version 1 on read.
const SchemaVersion = 1

// RiskLevel is the overall clinical risk classification of a plan.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// GoalStatus is the lifecycle status of a clinical goal.
type GoalStatus string

const (
	GoalActive       GoalStatus = "ACTIVE"
	GoalInProgress   GoalStatus = "IN_PROGRESS"
	GoalCompleted    GoalStatus = "COMPLETED"
	GoalMaintained   GoalStatus = "MAINTAINED"
	GoalDeferred     GoalStatus = "DEFERRED"
	GoalDiscontinued GoalStatus = "DISCONTINUED"
)

var validRiskLevels = map[RiskLevel]bool{
	RiskLow: true, RiskMedium: true, RiskHigh: true,
}

var validGoalStatuses = map[GoalStatus]bool{
	GoalActive: true, GoalInProgress: true, GoalCompleted: true,
	GoalMaintained: true, GoalDeferred: true, GoalDiscontinued: true,
}

// ValidRiskLevel reports whether l is a known risk level.
func ValidRiskLevel(l RiskLevel) bool { return validRiskLevels[l] }

// ValidGoalStatus reports whether s is a known goal status.
func ValidGoalStatus(s GoalStatus) bool { return validGoalStatuses[s] }

// ClinicalGoal is a clinician-facing treatment objective.
type ClinicalGoal struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      GoalStatus `json:"status"`
	TargetDate  string     `json:"target_date,omitempty"`
}

// ClientGoal is the patient-facing counterpart of a clinical goal. Goals
// added by the engine always arrive in clinical/client pairs sharing an id.
type ClientGoal struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// Diagnosis is a coded diagnosis with an optional human-readable description.
type Diagnosis struct {
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
}

// Document is the full plan content at a point in time.
type Document struct {
	SchemaVersion      int            `json:"schema_version"`
	RiskScore          RiskLevel      `json:"risk_score"`
	RiskRationale      string         `json:"risk_rationale,omitempty"`
	RiskFlags          []string       `json:"risk_flags,omitempty"`
	TherapistNote      string         `json:"therapist_note"`
	ClientSummary      string         `json:"client_summary"`
	PrimaryDiagnosis   *Diagnosis     `json:"primary_diagnosis,omitempty"`
	SecondaryDiagnoses []Diagnosis    `json:"secondary_diagnoses,omitempty"`
	ClinicalGoals      []ClinicalGoal `json:"clinical_goals"`
	ClientGoals        []ClientGoal   `json:"client_goals"`
	Interventions      []string       `json:"interventions"`
	Homework           string         `json:"homework,omitempty"`
}

// Validate checks the structural invariants of a document. It does not
// enforce the clinical/client goal pairing: documents produced by the engine
// always satisfy it, but manually edited data that predates the engine may
// not, and such documents must still be readable.
func (d *Document) Validate() error {
	if !ValidRiskLevel(d.RiskScore) {
		return fmt.Errorf("invalid risk_score: %q", d.RiskScore)
	}
	seen := make(map[string]bool, len(d.ClinicalGoals))
	for i, g := range d.ClinicalGoals {
		if g.ID == "" {
			return fmt.Errorf("clinical_goals[%d]: id is required", i)
		}
		if seen[g.ID] {
			return fmt.Errorf("clinical_goals[%d]: duplicate id %q", i, g.ID)
		}
		seen[g.ID] = true
		if g.Description == "" {
			return fmt.Errorf("clinical_goals[%d]: description is required", i)
		}
		if !ValidGoalStatus(g.Status) {
			return fmt.Errorf("clinical_goals[%d]: invalid status %q", i, g.Status)
		}
	}
	for i, g := range d.ClientGoals {
		if g.ID == "" {
			return fmt.Errorf("client_goals[%d]: id is required", i)
		}
	}
	iv := make(map[string]bool, len(d.Interventions))
	for i, name := range d.Interventions {
		if iv[name] {
			return fmt.Errorf("interventions[%d]: duplicate value %q", i, name)
		}
		iv[name] = true
	}
	return nil
}

// Parse decodes and validates a raw document. Callers on the read/compare
// side treat an error as "no usable prior document"; callers on the write
// side treat it as fatal.
func Parse(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode plan document: %w", err)
	}
	if d.SchemaVersion == 0 {
		d.SchemaVersion = 1
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("validate plan document: %w", err)
	}
	return &d, nil
}

// Encode marshals a document for storage.
func Encode(d *Document) ([]byte, error) {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode plan document: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the document so the merge engine can build a
// new revision without mutating its input.
func (d *Document) Clone() Document {
	out := *d
	out.RiskFlags = append([]string(nil), d.RiskFlags...)
	out.SecondaryDiagnoses = append([]Diagnosis(nil), d.SecondaryDiagnoses...)
	out.ClinicalGoals = append([]ClinicalGoal(nil), d.ClinicalGoals...)
	out.ClientGoals = append([]ClientGoal(nil), d.ClientGoals...)
	out.Interventions = append([]string(nil), d.Interventions...)
	if d.PrimaryDiagnosis != nil {
		pd := *d.PrimaryDiagnosis
		out.PrimaryDiagnosis = &pd
	}
	return out
}

// Goal returns the clinical goal with the given id, if present.
func (d *Document) Goal(id string) (*ClinicalGoal, bool) {
	for i := range d.ClinicalGoals {
		if d.ClinicalGoals[i].ID == id {
			return &d.ClinicalGoals[i], true
		}
	}
	return nil, false
}

// HasIntervention reports whether the document already lists the
// intervention by exact string match.
func (d *Document) HasIntervention(name string) bool {
	for _, iv := range d.Interventions {
		if iv == name {
			return true
		}
	}
	return false
}
