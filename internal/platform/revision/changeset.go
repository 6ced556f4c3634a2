// Package revision implements the pure treatment-plan revision engine: the
// merge of a proposed change-set into a plan document, the extraction of
// goal-level audit changes, and the read-only diff and history projections.
// Nothing in this package touches storage; every function is deterministic
// given its inputs and an injected id generator.
package revision

import (
	"fmt"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

// Priority ranks a proposed new goal.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var validPriorities = map[Priority]bool{
	PriorityHigh: true, PriorityMedium: true, PriorityLow: true,
}

// GoalUpdate proposes a status change for an existing goal.
type GoalUpdate struct {
	GoalID          string             `json:"goal_id"`
	CurrentStatus   plandoc.GoalStatus `json:"current_status"`
	SuggestedStatus plandoc.GoalStatus `json:"suggested_status"`
	ProgressNote    string             `json:"progress_note"`
	Rationale       string             `json:"rationale"`
}

// NewGoal proposes a goal that does not yet exist on the plan.
type NewGoal struct {
	Description         string   `json:"description"`
	ClinicalRationale   string   `json:"clinical_rationale"`
	SuggestedTargetDate string   `json:"suggested_target_date,omitempty"`
	Priority            Priority `json:"priority"`
	ClientDescription   string   `json:"client_description,omitempty"`
	Emoji               string   `json:"emoji,omitempty"`
}

// SuggestedIntervention proposes adding an intervention with its rationale.
type SuggestedIntervention struct {
	Intervention string `json:"intervention"`
	Rationale    string `json:"rationale"`
}

// HomeworkUpdate proposes replacing the homework text wholesale.
type HomeworkUpdate struct {
	Current   string `json:"current"`
	Suggested string `json:"suggested"`
	Rationale string `json:"rationale"`
}

// RiskAssessment carries the analysis engine's risk review.
type RiskAssessment struct {
	CurrentLevel   plandoc.RiskLevel `json:"current_level"`
	SuggestedLevel plandoc.RiskLevel `json:"suggested_level"`
	Rationale      string            `json:"rationale"`
	Flags          []string          `json:"flags"`
}

// DiagnosisUpdate proposes replacing the plan's diagnoses.
type DiagnosisUpdate struct {
	PrimaryDiagnosis   *plandoc.Diagnosis  `json:"primary_diagnosis,omitempty"`
	SecondaryDiagnoses []plandoc.Diagnosis `json:"secondary_diagnoses,omitempty"`
	Rationale          string              `json:"rationale,omitempty"`
}

// ChangeSet is the full set of proposed edits produced by the upstream
// analysis engine for one session. It is accepted wholesale or not at all.
type ChangeSet struct {
	GoalUpdates            []GoalUpdate            `json:"goal_updates"`
	NewGoals               []NewGoal               `json:"new_goals"`
	InterventionsUsed      []string                `json:"interventions_used"`
	SuggestedInterventions []SuggestedIntervention `json:"suggested_interventions"`
	HomeworkUpdate         *HomeworkUpdate         `json:"homework_update,omitempty"`
	RiskAssessment         RiskAssessment          `json:"risk_assessment"`
	TherapistNote          string                  `json:"therapist_note,omitempty"`
	ClientSummary          string                  `json:"client_summary,omitempty"`
	Diagnosis              *DiagnosisUpdate        `json:"diagnosis,omitempty"`
}

// Validate checks the change-set structurally. A failure rejects the whole
// change-set; partial acceptance is forbidden.
func (cs *ChangeSet) Validate() error {
	for i, u := range cs.GoalUpdates {
		if u.GoalID == "" {
			return fmt.Errorf("goal_updates[%d]: goal_id is required", i)
		}
		if !plandoc.ValidGoalStatus(u.SuggestedStatus) {
			return fmt.Errorf("goal_updates[%d]: invalid suggested_status %q", i, u.SuggestedStatus)
		}
		if u.CurrentStatus != "" && !plandoc.ValidGoalStatus(u.CurrentStatus) {
			return fmt.Errorf("goal_updates[%d]: invalid current_status %q", i, u.CurrentStatus)
		}
	}
	for i, g := range cs.NewGoals {
		if g.Description == "" {
			return fmt.Errorf("new_goals[%d]: description is required", i)
		}
		if !validPriorities[g.Priority] {
			return fmt.Errorf("new_goals[%d]: invalid priority %q", i, g.Priority)
		}
	}
	for i, s := range cs.SuggestedInterventions {
		if s.Intervention == "" {
			return fmt.Errorf("suggested_interventions[%d]: intervention is required", i)
		}
	}
	if !plandoc.ValidRiskLevel(cs.RiskAssessment.SuggestedLevel) {
		return fmt.Errorf("risk_assessment: invalid suggested_level %q", cs.RiskAssessment.SuggestedLevel)
	}
	if cs.RiskAssessment.CurrentLevel != "" && !plandoc.ValidRiskLevel(cs.RiskAssessment.CurrentLevel) {
		return fmt.Errorf("risk_assessment: invalid current_level %q", cs.RiskAssessment.CurrentLevel)
	}
	if cs.Diagnosis != nil {
		if cs.Diagnosis.PrimaryDiagnosis != nil && cs.Diagnosis.PrimaryDiagnosis.Code == "" {
			return fmt.Errorf("diagnosis: primary_diagnosis.code is required")
		}
		for i, d := range cs.Diagnosis.SecondaryDiagnoses {
			if d.Code == "" {
				return fmt.Errorf("diagnosis: secondary_diagnoses[%d].code is required", i)
			}
		}
	}
	return nil
}

// Overrides lets a reviewer replace whole top-level fields of a change-set
// before it is applied. A nil field leaves the original value; a set field
// replaces it entirely — there is no deep merging.
type Overrides struct {
	GoalUpdates            *[]GoalUpdate            `json:"goal_updates,omitempty"`
	NewGoals               *[]NewGoal               `json:"new_goals,omitempty"`
	InterventionsUsed      *[]string                `json:"interventions_used,omitempty"`
	SuggestedInterventions *[]SuggestedIntervention `json:"suggested_interventions,omitempty"`
	HomeworkUpdate         *HomeworkUpdate          `json:"homework_update,omitempty"`
	RiskAssessment         *RiskAssessment          `json:"risk_assessment,omitempty"`
	TherapistNote          *string                  `json:"therapist_note,omitempty"`
	ClientSummary          *string                  `json:"client_summary,omitempty"`
	Diagnosis              *DiagnosisUpdate         `json:"diagnosis,omitempty"`
}

// IsEmpty reports whether the overrides change nothing. An approval with
// empty overrides stays APPROVED; any override makes it MODIFIED.
func (o *Overrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.GoalUpdates == nil && o.NewGoals == nil &&
		o.InterventionsUsed == nil && o.SuggestedInterventions == nil &&
		o.HomeworkUpdate == nil && o.RiskAssessment == nil &&
		o.TherapistNote == nil && o.ClientSummary == nil && o.Diagnosis == nil
}

// apply returns a copy of cs with every set override substituted in.
func (o *Overrides) apply(cs ChangeSet) ChangeSet {
	if o == nil {
		return cs
	}
	if o.GoalUpdates != nil {
		cs.GoalUpdates = *o.GoalUpdates
	}
	if o.NewGoals != nil {
		cs.NewGoals = *o.NewGoals
	}
	if o.InterventionsUsed != nil {
		cs.InterventionsUsed = *o.InterventionsUsed
	}
	if o.SuggestedInterventions != nil {
		cs.SuggestedInterventions = *o.SuggestedInterventions
	}
	if o.HomeworkUpdate != nil {
		cs.HomeworkUpdate = o.HomeworkUpdate
	}
	if o.RiskAssessment != nil {
		cs.RiskAssessment = *o.RiskAssessment
	}
	if o.TherapistNote != nil {
		cs.TherapistNote = *o.TherapistNote
	}
	if o.ClientSummary != nil {
		cs.ClientSummary = *o.ClientSummary
	}
	if o.Diagnosis != nil {
		cs.Diagnosis = o.Diagnosis
	}
	return cs
}

// Resolve returns the change-set with overrides applied, for callers that
// need the effective change-set outside ApplyChanges (e.g. the extractor).
func (o *Overrides) Resolve(cs ChangeSet) ChangeSet { return o.apply(cs) }
