package revision

import "github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"

// StatusNew is the sentinel previous-status recorded for goals that did not
// exist before the change being audited.
const StatusNew plandoc.GoalStatus = "NEW"

// Reasons recorded on extracted goal changes.
const (
	ReasonManualUpdate = "Manual status update"
	ReasonNewGoal      = "New goal added"
	ReasonInitialGoal  = "Initial goal created"
)

// GoalChange is one goal-level status transition derived from a revision,
// destined for the append-only goal history log.
type GoalChange struct {
	GoalID          string
	GoalDescription string
	PreviousStatus  plandoc.GoalStatus
	NewStatus       plandoc.GoalStatus
	Reason          string
}

// FromChangeSet derives goal changes from an applied change-set: one entry
// per goal update whose suggested status actually differs from the matching
// goal's status on the pre-merge plan. Updates that resolve to no goal, or
// that propose the status the goal already has, produce nothing.
func FromChangeSet(current *plandoc.Document, cs ChangeSet) []GoalChange {
	if current == nil {
		return nil
	}
	var changes []GoalChange
	for _, u := range cs.GoalUpdates {
		g, ok := plandoc.ResolveGoal(current.ClinicalGoals, u.GoalID, "")
		if !ok || g.Status == u.SuggestedStatus {
			continue
		}
		changes = append(changes, GoalChange{
			GoalID:          g.ID,
			GoalDescription: g.Description,
			PreviousStatus:  g.Status,
			NewStatus:       u.SuggestedStatus,
			Reason:          u.Rationale,
		})
	}
	return changes
}

// FromDocuments derives goal changes by comparing a replacement document
// against the prior one, resolving each new-document goal through the shared
// id-then-description policy. With no prior document every goal is recorded
// as newly created.
func FromDocuments(before *plandoc.Document, after *plandoc.Document) []GoalChange {
	var changes []GoalChange
	for _, g := range after.ClinicalGoals {
		if before == nil {
			changes = append(changes, GoalChange{
				GoalID:          g.ID,
				GoalDescription: g.Description,
				PreviousStatus:  StatusNew,
				NewStatus:       g.Status,
				Reason:          ReasonInitialGoal,
			})
			continue
		}
		prior, ok := plandoc.ResolveGoal(before.ClinicalGoals, g.ID, g.Description)
		switch {
		case !ok:
			changes = append(changes, GoalChange{
				GoalID:          g.ID,
				GoalDescription: g.Description,
				PreviousStatus:  StatusNew,
				NewStatus:       g.Status,
				Reason:          ReasonNewGoal,
			})
		case prior.Status != g.Status:
			changes = append(changes, GoalChange{
				GoalID:          g.ID,
				GoalDescription: g.Description,
				PreviousStatus:  prior.Status,
				NewStatus:       g.Status,
				Reason:          ReasonManualUpdate,
			})
		}
	}
	return changes
}
