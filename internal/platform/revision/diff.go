package revision

import (
	"fmt"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

// GoalDiff is one proposed goal status change positioned against the live
// plan. No-op entries (suggested status equals the live status) are kept;
// filtering is the caller's concern.
type GoalDiff struct {
	GoalID          string             `json:"goal_id"`
	Description     string             `json:"description"`
	CurrentStatus   plandoc.GoalStatus `json:"current_status"`
	SuggestedStatus plandoc.GoalStatus `json:"suggested_status"`
	Rationale       string             `json:"rationale"`
}

// RiskDiff describes a proposed risk level change relative to the live plan.
type RiskDiff struct {
	From      plandoc.RiskLevel `json:"from"`
	To        plandoc.RiskLevel `json:"to"`
	Rationale string            `json:"rationale"`
}

// DiffSummary counts the effective changes a suggestion proposes.
type DiffSummary struct {
	GoalUpdates       int  `json:"goal_updates"`
	NewGoals          int  `json:"new_goals"`
	NewInterventions  int  `json:"new_interventions"`
	HasHomeworkChange bool `json:"has_homework_change"`
	HasRiskChange     bool `json:"has_risk_change"`
	TotalChanges      int  `json:"total_changes"`
}

// Diff is the read-only structural comparison of a live plan against a
// pending change-set, shaped for review display.
type Diff struct {
	GoalChanges      []GoalDiff      `json:"goal_changes"`
	NewGoals         []NewGoal       `json:"new_goals"`
	NewInterventions []string        `json:"new_interventions"`
	HomeworkChange   *HomeworkUpdate `json:"homework_change"`
	RiskChange       *RiskDiff       `json:"risk_change"`
	Summary          DiffSummary     `json:"summary"`
}

// BuildDiff compares the live plan document against a pending change-set.
// The risk comparison runs against the plan's current risk score rather
// than the level the suggestion recorded at generation time: the plan may
// have moved since the suggestion was produced, and the review display must
// show the change the approval would actually make.
func BuildDiff(plan *plandoc.Document, cs ChangeSet) Diff {
	if plan == nil {
		plan = &plandoc.Document{}
	}

	diff := Diff{
		NewGoals:       cs.NewGoals,
		HomeworkChange: cs.HomeworkUpdate,
	}

	statusChanges := 0
	for _, u := range cs.GoalUpdates {
		gd := GoalDiff{
			GoalID:          u.GoalID,
			Description:     fmt.Sprintf("Goal %s", u.GoalID),
			CurrentStatus:   u.CurrentStatus,
			SuggestedStatus: u.SuggestedStatus,
			Rationale:       u.Rationale,
		}
		if g, ok := plan.Goal(u.GoalID); ok {
			gd.Description = g.Description
			gd.CurrentStatus = g.Status
		}
		if gd.CurrentStatus != gd.SuggestedStatus {
			statusChanges++
		}
		diff.GoalChanges = append(diff.GoalChanges, gd)
	}

	for _, iv := range cs.InterventionsUsed {
		if !plan.HasIntervention(iv) {
			diff.NewInterventions = append(diff.NewInterventions, iv)
		}
	}

	if cs.RiskAssessment.SuggestedLevel != plan.RiskScore {
		diff.RiskChange = &RiskDiff{
			From:      plan.RiskScore,
			To:        cs.RiskAssessment.SuggestedLevel,
			Rationale: cs.RiskAssessment.Rationale,
		}
	}

	diff.Summary = DiffSummary{
		GoalUpdates:       statusChanges,
		NewGoals:          len(cs.NewGoals),
		NewInterventions:  len(diff.NewInterventions),
		HasHomeworkChange: cs.HomeworkUpdate != nil,
		HasRiskChange:     diff.RiskChange != nil,
	}
	total := diff.Summary.GoalUpdates + diff.Summary.NewGoals + diff.Summary.NewInterventions
	if diff.Summary.HasHomeworkChange {
		total++
	}
	if diff.Summary.HasRiskChange {
		total++
	}
	diff.Summary.TotalChanges = total

	return diff
}
