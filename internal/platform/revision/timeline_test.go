package revision

import (
	"testing"
	"time"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

func historyAt(goalID, desc string, prev, next plandoc.GoalStatus, offset time.Duration) HistoryRecord {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return HistoryRecord{
		GoalID: goalID, GoalDescription: desc,
		PreviousStatus: prev, NewStatus: next,
		ChangedAt: base.Add(offset),
	}
}

func TestBuildGoalHistory_GroupsAndCoversLiveGoals(t *testing.T) {
	p := basePlan() // goals g1, g2; g2 has no history
	records := []HistoryRecord{
		historyAt("g1", "Reduce anxiety", StatusNew, plandoc.GoalInProgress, 0),
		historyAt("g1", "Reduce anxiety", plandoc.GoalInProgress, plandoc.GoalActive, time.Hour),
		historyAt("g1", "Reduce anxiety", plandoc.GoalActive, plandoc.GoalInProgress, 2*time.Hour),
	}
	timelines := BuildGoalHistory(p, records)

	if len(timelines) != 2 {
		t.Fatalf("timelines = %d, want 2", len(timelines))
	}
	// Ordered by goal id ascending.
	if timelines[0].GoalID != "g1" || timelines[1].GoalID != "g2" {
		t.Errorf("order = %s, %s", timelines[0].GoalID, timelines[1].GoalID)
	}
	if len(timelines[0].History) != 3 {
		t.Errorf("g1 history = %d, want 3", len(timelines[0].History))
	}
	if len(timelines[1].History) != 0 {
		t.Errorf("g2 history = %d, want 0", len(timelines[1].History))
	}
	if timelines[1].CurrentStatus != plandoc.GoalActive {
		t.Errorf("g2 status = %s", timelines[1].CurrentStatus)
	}
}

func TestBuildGoalHistory_ChronologicalWithinGroup(t *testing.T) {
	p := basePlan()
	records := []HistoryRecord{
		historyAt("g1", "Reduce anxiety", plandoc.GoalActive, plandoc.GoalCompleted, 2*time.Hour),
		historyAt("g1", "Reduce anxiety", StatusNew, plandoc.GoalInProgress, 0),
		historyAt("g1", "Reduce anxiety", plandoc.GoalInProgress, plandoc.GoalActive, time.Hour),
	}
	timelines := BuildGoalHistory(p, records)

	h := timelines[0].History
	for i := 1; i < len(h); i++ {
		if h[i].ChangedAt.Before(h[i-1].ChangedAt) {
			t.Fatalf("history not ascending at %d", i)
		}
	}
}

func TestBuildGoalHistory_LiveStatusPreferred(t *testing.T) {
	p := basePlan() // g1 live status IN_PROGRESS
	records := []HistoryRecord{
		historyAt("g1", "Reduce anxiety", StatusNew, plandoc.GoalCompleted, 0),
	}
	timelines := BuildGoalHistory(p, records)
	if timelines[0].CurrentStatus != plandoc.GoalInProgress {
		t.Errorf("status = %s, want live plan's IN_PROGRESS", timelines[0].CurrentStatus)
	}
}

func TestBuildGoalHistory_DescriptionFallbackResolution(t *testing.T) {
	p := basePlan()
	// History rows carry a stale id but the latest description matches g1.
	records := []HistoryRecord{
		historyAt("old-id", "reduce ANXIETY", StatusNew, plandoc.GoalCompleted, 0),
	}
	timelines := BuildGoalHistory(p, records)

	// One group for the stale id (resolved to g1 by description) plus the
	// uncovered live goal g2.
	if len(timelines) != 2 {
		t.Fatalf("timelines = %d, want 2", len(timelines))
	}
	var stale *GoalTimeline
	for i := range timelines {
		if timelines[i].GoalID == "old-id" {
			stale = &timelines[i]
		}
	}
	if stale == nil {
		t.Fatal("missing timeline for stale id")
	}
	if stale.CurrentStatus != plandoc.GoalInProgress {
		t.Errorf("status = %s, want live g1 status", stale.CurrentStatus)
	}
	if stale.Description != "Reduce anxiety" {
		t.Errorf("description = %q, want live g1 description", stale.Description)
	}
}

func TestBuildGoalHistory_UnresolvedFallsBackToLatestEntry(t *testing.T) {
	p := basePlan()
	records := []HistoryRecord{
		historyAt("gone", "Discharged goal", StatusNew, plandoc.GoalDiscontinued, 0),
	}
	timelines := BuildGoalHistory(p, records)

	var gone *GoalTimeline
	for i := range timelines {
		if timelines[i].GoalID == "gone" {
			gone = &timelines[i]
		}
	}
	if gone == nil {
		t.Fatal("missing timeline")
	}
	if gone.CurrentStatus != plandoc.GoalDiscontinued {
		t.Errorf("status = %s, want latest entry's DISCONTINUED", gone.CurrentStatus)
	}
	if gone.Description != "Discharged goal" {
		t.Errorf("description = %q", gone.Description)
	}
}

func TestBuildGoalHistory_EmptyEverything(t *testing.T) {
	if timelines := BuildGoalHistory(nil, nil); len(timelines) != 0 {
		t.Errorf("timelines = %v, want none", timelines)
	}
}
