package plandoc

import "strings"

// ResolveGoal locates a goal in goals by exact id match, falling back to a
// case-insensitive exact match on description. Upstream analysis regenerates
// goal ids between runs, so the description fallback is what keeps a
// regenerated goal attached to its history; no match means "new goal".
//
// This is the single resolution policy shared by the change extractor (both
// the change-set and the document-comparison paths) and the goal history
// projection.
func ResolveGoal(goals []ClinicalGoal, id, description string) (*ClinicalGoal, bool) {
	if id != "" {
		for i := range goals {
			if goals[i].ID == id {
				return &goals[i], true
			}
		}
	}
	if description != "" {
		for i := range goals {
			if strings.EqualFold(goals[i].Description, description) {
				return &goals[i], true
			}
		}
	}
	return nil, false
}
