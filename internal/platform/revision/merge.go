package revision

import (
	"fmt"
	"strings"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

// NoChangesSummary is the change summary recorded when applying a change-set
// leaves the plan untouched.
const NoChangesSummary = "No changes applied"

// summaryDescriptionMaxLen caps goal descriptions quoted in summary lines.
const summaryDescriptionMaxLen = 40

// Result is the outcome of applying a change-set to a plan document.
type Result struct {
	UpdatedPlan    plandoc.Document
	ChangeSummary  string
	ChangedGoalIDs []string
	NewGoalIDs     []string
}

// ApplyChanges merges a change-set (with reviewer overrides substituted in)
// into the current plan document and returns the new document plus a
// human-readable summary of what changed. A nil current document means the
// patient has no plan yet and one is created from the change-set alone.
//
// The function performs no I/O and never mutates its inputs; given the same
// inputs and id generator it always produces the same output.
func ApplyChanges(current *plandoc.Document, cs ChangeSet, ov *Overrides, ids plandoc.IDGenerator) Result {
	effective := ov.apply(cs)
	if current == nil {
		return buildInitialPlan(effective, ids)
	}
	return mergeIntoPlan(current, effective, ids)
}

func buildInitialPlan(cs ChangeSet, ids plandoc.IDGenerator) Result {
	doc := plandoc.Document{
		SchemaVersion: plandoc.SchemaVersion,
		RiskScore:     cs.RiskAssessment.SuggestedLevel,
		RiskRationale: cs.RiskAssessment.Rationale,
		RiskFlags:     append([]string(nil), cs.RiskAssessment.Flags...),
		TherapistNote: plandoc.DefaultTherapistNote,
		ClientSummary: plandoc.DefaultClientSummary,
	}
	if cs.TherapistNote != "" {
		doc.TherapistNote = cs.TherapistNote
	}
	if cs.ClientSummary != "" {
		doc.ClientSummary = cs.ClientSummary
	}

	var newIDs []string
	for _, ng := range cs.NewGoals {
		id := ids.NewGoalID()
		newIDs = append(newIDs, id)
		doc.ClinicalGoals = append(doc.ClinicalGoals, plandoc.ClinicalGoal{
			ID:          id,
			Description: ng.Description,
			Status:      plandoc.GoalInProgress,
			TargetDate:  ng.SuggestedTargetDate,
		})
		doc.ClientGoals = append(doc.ClientGoals, clientGoalFor(id, ng))
	}

	for _, iv := range cs.InterventionsUsed {
		if !doc.HasIntervention(iv) {
			doc.Interventions = append(doc.Interventions, iv)
		}
	}
	for _, si := range cs.SuggestedInterventions {
		if !doc.HasIntervention(si.Intervention) {
			doc.Interventions = append(doc.Interventions, si.Intervention)
		}
	}

	if cs.HomeworkUpdate != nil {
		doc.Homework = cs.HomeworkUpdate.Suggested
	}
	if cs.Diagnosis != nil {
		doc.PrimaryDiagnosis = cs.Diagnosis.PrimaryDiagnosis
		doc.SecondaryDiagnoses = cs.Diagnosis.SecondaryDiagnoses
	}

	return Result{
		UpdatedPlan:   doc,
		ChangeSummary: fmt.Sprintf("Initial treatment plan created with %d goal(s) established", len(cs.NewGoals)),
		NewGoalIDs:    newIDs,
	}
}

func mergeIntoPlan(current *plandoc.Document, cs ChangeSet, ids plandoc.IDGenerator) Result {
	doc := current.Clone()
	doc.SchemaVersion = plandoc.SchemaVersion

	var summary []string
	var changedIDs []string

	updatesByID := make(map[string]GoalUpdate, len(cs.GoalUpdates))
	for _, u := range cs.GoalUpdates {
		updatesByID[u.GoalID] = u
	}

	// Existing goals: apply status changes by exact id; unmatched updates
	// are dropped (upstream id regeneration is expected, not an error).
	for i := range doc.ClinicalGoals {
		g := &doc.ClinicalGoals[i]
		u, ok := updatesByID[g.ID]
		if !ok || u.SuggestedStatus == g.Status {
			continue
		}
		summary = append(summary, fmt.Sprintf("%q status: %s → %s",
			truncateDescription(g.Description), g.Status, u.SuggestedStatus))
		g.Status = u.SuggestedStatus
		changedIDs = append(changedIDs, g.ID)
	}

	var newIDs []string
	for _, ng := range cs.NewGoals {
		id := ids.NewGoalID()
		newIDs = append(newIDs, id)
		doc.ClinicalGoals = append(doc.ClinicalGoals, plandoc.ClinicalGoal{
			ID:          id,
			Description: ng.Description,
			Status:      plandoc.GoalInProgress,
			TargetDate:  ng.SuggestedTargetDate,
		})
		doc.ClientGoals = append(doc.ClientGoals, clientGoalFor(id, ng))
	}
	if len(newIDs) > 0 {
		summary = append(summary, fmt.Sprintf("Added %d new goal(s)", len(newIDs)))
	}

	added := 0
	for _, iv := range cs.InterventionsUsed {
		if !doc.HasIntervention(iv) {
			doc.Interventions = append(doc.Interventions, iv)
			added++
		}
	}
	for _, si := range cs.SuggestedInterventions {
		if !doc.HasIntervention(si.Intervention) {
			doc.Interventions = append(doc.Interventions, si.Intervention)
			added++
		}
	}
	if added > 0 {
		summary = append(summary, fmt.Sprintf("Added %d intervention(s)", added))
	}

	if cs.HomeworkUpdate != nil {
		doc.Homework = cs.HomeworkUpdate.Suggested
		summary = append(summary, "Homework updated")
	}

	// The risk level only moves when the assessment disagrees with the
	// document, but rationale and flags are refreshed whenever the
	// assessment supplies them.
	if cs.RiskAssessment.SuggestedLevel != doc.RiskScore {
		summary = append(summary, fmt.Sprintf("Risk level: %s → %s",
			doc.RiskScore, cs.RiskAssessment.SuggestedLevel))
		doc.RiskScore = cs.RiskAssessment.SuggestedLevel
	}
	if cs.RiskAssessment.Rationale != "" {
		doc.RiskRationale = cs.RiskAssessment.Rationale
	}
	if len(cs.RiskAssessment.Flags) > 0 {
		doc.RiskFlags = append([]string(nil), cs.RiskAssessment.Flags...)
	}

	if cs.TherapistNote != "" && cs.TherapistNote != doc.TherapistNote {
		doc.TherapistNote = cs.TherapistNote
		summary = append(summary, "Therapist note updated")
	}
	if cs.ClientSummary != "" && cs.ClientSummary != doc.ClientSummary {
		doc.ClientSummary = cs.ClientSummary
		summary = append(summary, "Client summary updated")
	}

	if cs.Diagnosis != nil {
		doc.PrimaryDiagnosis = cs.Diagnosis.PrimaryDiagnosis
		doc.SecondaryDiagnoses = cs.Diagnosis.SecondaryDiagnoses
		summary = append(summary, "Diagnosis updated")
	}

	changeSummary := NoChangesSummary
	if len(summary) > 0 {
		changeSummary = strings.Join(summary, "; ")
	}

	return Result{
		UpdatedPlan:    doc,
		ChangeSummary:  changeSummary,
		ChangedGoalIDs: changedIDs,
		NewGoalIDs:     newIDs,
	}
}

// clientGoalFor builds the patient-facing pair of a synthesized goal, using
// the explicit client description when given and the plain-language
// simplification of the clinical description otherwise.
func clientGoalFor(id string, ng NewGoal) plandoc.ClientGoal {
	desc := ng.ClientDescription
	if desc == "" {
		desc = plandoc.SimplifyClinicalDescription(ng.Description)
	}
	emoji := ng.Emoji
	if emoji == "" {
		emoji = plandoc.DefaultGoalEmoji
	}
	return plandoc.ClientGoal{ID: id, Description: desc, Emoji: emoji}
}

func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryDescriptionMaxLen {
		return s
	}
	return string(runes[:summaryDescriptionMaxLen]) + "..."
}
