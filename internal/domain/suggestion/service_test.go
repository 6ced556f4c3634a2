package suggestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/goalhistory"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/treatmentplan"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/revision"
)

type mockSuggestions struct {
	byID      map[uuid.UUID]*Suggestion
	bySession map[uuid.UUID]uuid.UUID
}

func newMockSuggestions() *mockSuggestions {
	return &mockSuggestions{
		byID:      make(map[uuid.UUID]*Suggestion),
		bySession: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockSuggestions) Create(ctx context.Context, s *Suggestion) error {
	if _, exists := m.bySession[s.SessionID]; exists {
		return ErrDuplicateSession
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	m.byID[s.ID] = s
	m.bySession[s.SessionID] = s.ID
	return nil
}

func (m *mockSuggestions) GetByID(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrSuggestionNotFound
	}
	return s, nil
}

func (m *mockSuggestions) GetForUpdate(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSuggestions) GetBySession(ctx context.Context, sessionID uuid.UUID) (*Suggestion, error) {
	id, ok := m.bySession[sessionID]
	if !ok {
		return nil, ErrSuggestionNotFound
	}
	return m.byID[id], nil
}

func (m *mockSuggestions) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*Suggestion, int, error) {
	var out []*Suggestion
	for _, s := range m.byID {
		if s.PlanID == planID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (m *mockSuggestions) LatestPendingForPlan(ctx context.Context, planID uuid.UUID) (*Suggestion, error) {
	var latest *Suggestion
	for _, s := range m.byID {
		if s.PlanID == planID && s.Status == StatusPending {
			if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, ErrSuggestionNotFound
	}
	return latest, nil
}

func (m *mockSuggestions) MarkReviewed(ctx context.Context, id uuid.UUID, status Status, reviewedBy string, therapistNotes *string, reviewedAt time.Time) error {
	s, ok := m.byID[id]
	if !ok || s.Status != StatusPending {
		return ErrReviewConflict
	}
	s.Status = status
	s.ReviewedBy = &reviewedBy
	s.TherapistNotes = therapistNotes
	s.ReviewedAt = &reviewedAt
	return nil
}

type mockPlans struct {
	plans    map[uuid.UUID]*treatmentplan.TreatmentPlan
	versions []*treatmentplan.PlanVersion
}

func newMockPlans() *mockPlans {
	return &mockPlans{plans: make(map[uuid.UUID]*treatmentplan.TreatmentPlan)}
}

func (m *mockPlans) Create(ctx context.Context, p *treatmentplan.TreatmentPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlans) GetByID(ctx context.Context, id uuid.UUID) (*treatmentplan.TreatmentPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, treatmentplan.ErrPlanNotFound
	}
	return p, nil
}

func (m *mockPlans) GetByPatient(ctx context.Context, patientID uuid.UUID) (*treatmentplan.TreatmentPlan, error) {
	for _, p := range m.plans {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return nil, treatmentplan.ErrPlanNotFound
}

func (m *mockPlans) GetForUpdate(ctx context.Context, id uuid.UUID) (*treatmentplan.TreatmentPlan, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPlans) UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error {
	p, ok := m.plans[id]
	if !ok {
		return treatmentplan.ErrPlanNotFound
	}
	p.CurrentContent = content
	return nil
}

func (m *mockPlans) UpdateContentAndReviewDates(ctx context.Context, id uuid.UUID, content []byte, lastReviewedAt, nextReviewDue time.Time) error {
	p, ok := m.plans[id]
	if !ok {
		return treatmentplan.ErrPlanNotFound
	}
	p.CurrentContent = content
	p.LastReviewedAt = &lastReviewedAt
	p.NextReviewDue = &nextReviewDue
	return nil
}

func (m *mockPlans) InsertVersion(ctx context.Context, v *treatmentplan.PlanVersion) error {
	for _, existing := range m.versions {
		if existing.PlanID == v.PlanID && existing.Version == v.Version {
			return treatmentplan.ErrVersionConflict
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	m.versions = append(m.versions, v)
	return nil
}

func (m *mockPlans) LatestVersion(ctx context.Context, planID uuid.UUID) (*treatmentplan.PlanVersion, error) {
	var latest *treatmentplan.PlanVersion
	for _, v := range m.versions {
		if v.PlanID == planID && (latest == nil || v.Version > latest.Version) {
			latest = v
		}
	}
	if latest == nil {
		return nil, treatmentplan.ErrVersionNotFound
	}
	return latest, nil
}

func (m *mockPlans) CountVersions(ctx context.Context, planID uuid.UUID) (int, error) {
	n := 0
	for _, v := range m.versions {
		if v.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (m *mockPlans) ListVersions(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*treatmentplan.PlanVersion, int, error) {
	var items []*treatmentplan.PlanVersion
	for _, v := range m.versions {
		if v.PlanID == planID {
			items = append(items, v)
		}
	}
	return items, len(items), nil
}

func (m *mockPlans) GetVersion(ctx context.Context, planID uuid.UUID, version int) (*treatmentplan.PlanVersion, error) {
	for _, v := range m.versions {
		if v.PlanID == planID && v.Version == version {
			return v, nil
		}
	}
	return nil, treatmentplan.ErrVersionNotFound
}

type mockHistory struct {
	entries []*goalhistory.Entry
}

func (m *mockHistory) Append(ctx context.Context, e *goalhistory.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockHistory) AppendAll(ctx context.Context, entries []*goalhistory.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockHistory) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*goalhistory.Entry, error) {
	return m.entries, nil
}

func (m *mockHistory) ListByGoal(ctx context.Context, planID uuid.UUID, goalID string) ([]*goalhistory.Entry, error) {
	return nil, nil
}

type mockSessionMarker struct {
	processed []uuid.UUID
}

func (m *mockSessionMarker) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	m.processed = append(m.processed, id)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lockingTx serializes transactions the way the suggestion row lock does in
// Postgres: the second reviewer's transaction waits for the first to commit.
type lockingTx struct{ mu sync.Mutex }

func (l *lockingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type seqIDs struct{ n int }

func (s *seqIDs) NewGoalID() string {
	s.n++
	return fmt.Sprintf("ng-%d", s.n)
}

func planDoc() *plandoc.Document {
	return &plandoc.Document{
		RiskScore: plandoc.RiskLow,
		ClinicalGoals: []plandoc.ClinicalGoal{
			{ID: "g1", Description: "Reduce anxiety", Status: plandoc.GoalInProgress},
			{ID: "g2", Description: "Improve sleep hygiene", Status: plandoc.GoalActive},
		},
		ClientGoals: []plandoc.ClientGoal{
			{ID: "g1", Description: "Feel calmer day to day", Emoji: "🧘"},
			{ID: "g2", Description: "Sleep better", Emoji: "😴"},
		},
		Interventions: []string{"CBT"},
	}
}

func baseChangeSet() revision.ChangeSet {
	return revision.ChangeSet{
		GoalUpdates: []revision.GoalUpdate{{
			GoalID:          "g1",
			CurrentStatus:   plandoc.GoalInProgress,
			SuggestedStatus: plandoc.GoalCompleted,
			Rationale:       "Client met the anxiety reduction target",
		}},
		NewGoals: []revision.NewGoal{{
			Description:       "Practice daily grounding exercises",
			ClinicalRationale: "Client responded well to grounding in session",
			Priority:          revision.PriorityMedium,
		}},
		RiskAssessment: revision.RiskAssessment{
			CurrentLevel:   plandoc.RiskLow,
			SuggestedLevel: plandoc.RiskLow,
		},
	}
}

type fixture struct {
	svc         *Service
	suggestions *mockSuggestions
	plans       *mockPlans
	history     *mockHistory
	sessions    *mockSessionMarker
}

func newFixture(t *testing.T) (*fixture, uuid.UUID) {
	t.Helper()
	suggestions := newMockSuggestions()
	plans := newMockPlans()
	history := &mockHistory{}
	sessions := &mockSessionMarker{}
	svc := NewService(suggestions, plans, history, sessions, passthroughTx{},
		&seqIDs{}, 90*24*time.Hour, zerolog.Nop())

	raw, err := plandoc.Encode(planDoc())
	if err != nil {
		t.Fatalf("encode plan doc: %v", err)
	}
	plan := &treatmentplan.TreatmentPlan{PatientID: uuid.New(), CurrentContent: raw}
	if err := plans.Create(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	v := &treatmentplan.PlanVersion{
		PlanID: plan.ID, Version: 1, Content: raw,
		ChangeType: treatmentplan.ChangeInitial, CreatedBy: "therapist-1",
	}
	if err := plans.InsertVersion(context.Background(), v); err != nil {
		t.Fatalf("seed version: %v", err)
	}

	return &fixture{svc: svc, suggestions: suggestions, plans: plans,
		history: history, sessions: sessions}, plan.ID
}

func (f *fixture) pendingSuggestion(t *testing.T, planID uuid.UUID) *Suggestion {
	t.Helper()
	sug, created, err := f.svc.Create(context.Background(), planID, uuid.New(),
		baseChangeSet(), "Discussed anxiety progress", "Client engaged throughout")
	if err != nil {
		t.Fatalf("create suggestion: %v", err)
	}
	if !created {
		t.Fatal("expected a new suggestion")
	}
	return sug
}

func TestCreate_FreezesChangeSet(t *testing.T) {
	f, planID := newFixture(t)

	sug := f.pendingSuggestion(t, planID)
	if sug.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", sug.Status)
	}

	var cs revision.ChangeSet
	if err := json.Unmarshal(sug.SuggestedChanges, &cs); err != nil {
		t.Fatalf("frozen changes not decodable: %v", err)
	}
	if len(cs.GoalUpdates) != 1 || cs.GoalUpdates[0].GoalID != "g1" {
		t.Errorf("frozen change set lost its goal update: %+v", cs.GoalUpdates)
	}
}

func TestCreate_IdempotentPerSession(t *testing.T) {
	f, planID := newFixture(t)
	sessionID := uuid.New()

	first, created, err := f.svc.Create(context.Background(), planID, sessionID, baseChangeSet(), "", "")
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}

	second, created, err := f.svc.Create(context.Background(), planID, sessionID, baseChangeSet(), "", "")
	if err != nil {
		t.Fatalf("repeat create: %v", err)
	}
	if created {
		t.Error("repeat create reported a new row")
	}
	if second.ID != first.ID {
		t.Errorf("repeat create returned a different suggestion: %s vs %s", second.ID, first.ID)
	}
}

func TestCreate_InvalidChangeSetRejected(t *testing.T) {
	f, planID := newFixture(t)

	cs := baseChangeSet()
	cs.RiskAssessment.SuggestedLevel = "CATASTROPHIC"
	_, _, err := f.svc.Create(context.Background(), planID, uuid.New(), cs, "", "")
	if !errors.Is(err, ErrInvalidChangeSet) {
		t.Fatalf("expected ErrInvalidChangeSet, got %v", err)
	}
	if len(f.suggestions.byID) != 0 {
		t.Error("invalid change set was stored")
	}
}

func TestCreate_PlanMustExist(t *testing.T) {
	f, _ := newFixture(t)

	_, _, err := f.svc.Create(context.Background(), uuid.New(), uuid.New(), baseChangeSet(), "", "")
	if !errors.Is(err, treatmentplan.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestApprove(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	outcome, err := f.svc.Approve(context.Background(), sug.ID, nil, "therapist-1", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if outcome.Suggestion.Status != StatusApproved {
		t.Errorf("expected APPROVED, got %s", outcome.Suggestion.Status)
	}
	if outcome.Suggestion.ReviewedAt == nil || outcome.Suggestion.ReviewedBy == nil {
		t.Error("review metadata not recorded")
	}

	v := outcome.Version
	if v.Version != 2 || v.ChangeType != treatmentplan.ChangeSessionUpdate {
		t.Errorf("expected version 2 SESSION_UPDATE, got %d %s", v.Version, v.ChangeType)
	}
	if v.SourceSuggestionID == nil || *v.SourceSuggestionID != sug.ID {
		t.Error("version not linked to the suggestion")
	}
	if !strings.Contains(v.ChangeSummary, "Reduce anxiety") {
		t.Errorf("summary missing goal change: %q", v.ChangeSummary)
	}

	plan, _ := f.plans.GetByID(context.Background(), planID)
	merged, err := plandoc.Parse(plan.CurrentContent)
	if err != nil {
		t.Fatalf("merged content unparseable: %v", err)
	}
	if g, ok := merged.Goal("g1"); !ok || g.Status != plandoc.GoalCompleted {
		t.Error("g1 not moved to COMPLETED on the live plan")
	}
	if _, ok := merged.Goal("ng-1"); !ok {
		t.Error("new goal missing from the live plan")
	}
	if plan.LastReviewedAt == nil || plan.NextReviewDue == nil {
		t.Fatal("review dates not advanced")
	}
	if got := plan.NextReviewDue.Sub(*plan.LastReviewedAt); got != 90*24*time.Hour {
		t.Errorf("expected 90 day review interval, got %s", got)
	}

	if len(f.history.entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(f.history.entries))
	}
	for _, e := range f.history.entries {
		if e.SessionID == nil || *e.SessionID != sug.SessionID {
			t.Error("history entry not linked to the session")
		}
		switch e.GoalID {
		case "g1":
			if e.PreviousStatus != "IN_PROGRESS" || e.NewStatus != "COMPLETED" {
				t.Errorf("g1 transition wrong: %s -> %s", e.PreviousStatus, e.NewStatus)
			}
		case "ng-1":
			if e.PreviousStatus != "NEW" || e.NewStatus != "IN_PROGRESS" {
				t.Errorf("new goal transition wrong: %s -> %s", e.PreviousStatus, e.NewStatus)
			}
			if e.Reason != "New goal added from session analysis" {
				t.Errorf("new goal reason wrong: %q", e.Reason)
			}
		default:
			t.Errorf("unexpected history entry for %s", e.GoalID)
		}
	}

	if len(f.sessions.processed) != 1 || f.sessions.processed[0] != sug.SessionID {
		t.Error("session not marked processed")
	}
}

func TestApprove_Twice(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	if _, err := f.svc.Approve(context.Background(), sug.ID, nil, "therapist-1", nil); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := f.svc.Approve(context.Background(), sug.ID, nil, "therapist-2", nil)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if !strings.Contains(err.Error(), "APPROVED") {
		t.Errorf("error should name the terminal state: %v", err)
	}

	count, _ := f.plans.CountVersions(context.Background(), planID)
	if count != 2 {
		t.Errorf("expected exactly 2 versions after double approve, got %d", count)
	}
}

func TestApprove_ConcurrentReviewersSingleWinner(t *testing.T) {
	f, planID := newFixture(t)
	f.svc = NewService(f.suggestions, f.plans, f.history, f.sessions,
		&lockingTx{}, &seqIDs{}, 90*24*time.Hour, zerolog.Nop())
	sug := f.pendingSuggestion(t, planID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reviewer := fmt.Sprintf("therapist-%d", i+1)
			_, errs[i] = f.svc.Approve(context.Background(), sug.ID, nil, reviewer, nil)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrReviewConflict):
		default:
			t.Fatalf("unexpected approve error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning reviewer, got %d", winners)
	}

	count, _ := f.plans.CountVersions(context.Background(), planID)
	if count != 2 {
		t.Errorf("expected exactly 2 versions after concurrent approves, got %d", count)
	}
	if len(f.sessions.processed) != 1 {
		t.Errorf("expected the session processed exactly once, got %d", len(f.sessions.processed))
	}
}

func TestApprove_WithOverrides(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	// Reviewer strikes the goal update entirely; only the new goal lands.
	empty := []revision.GoalUpdate{}
	ov := &revision.Overrides{GoalUpdates: &empty}

	outcome, err := f.svc.Approve(context.Background(), sug.ID, ov, "therapist-1", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if outcome.Suggestion.Status != StatusModified {
		t.Errorf("expected MODIFIED, got %s", outcome.Suggestion.Status)
	}

	plan, _ := f.plans.GetByID(context.Background(), planID)
	merged, err := plandoc.Parse(plan.CurrentContent)
	if err != nil {
		t.Fatalf("merged content unparseable: %v", err)
	}
	if g, _ := merged.Goal("g1"); g.Status != plandoc.GoalInProgress {
		t.Error("overridden goal update was still applied")
	}
	for _, e := range f.history.entries {
		if e.GoalID == "g1" {
			t.Error("history recorded a change the override removed")
		}
	}
}

func TestApprove_EmptyOverridesStayApproved(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	outcome, err := f.svc.Approve(context.Background(), sug.ID, &revision.Overrides{}, "therapist-1", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if outcome.Suggestion.Status != StatusApproved {
		t.Errorf("empty overrides should stay APPROVED, got %s", outcome.Suggestion.Status)
	}
}

func TestApprove_NotFound(t *testing.T) {
	f, _ := newFixture(t)

	_, err := f.svc.Approve(context.Background(), uuid.New(), nil, "therapist-1", nil)
	if !errors.Is(err, ErrSuggestionNotFound) {
		t.Fatalf("expected ErrSuggestionNotFound, got %v", err)
	}
}

func TestApprove_CorruptBaseline(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	plan, _ := f.plans.GetByID(context.Background(), planID)
	plan.CurrentContent = []byte("{broken")

	outcome, err := f.svc.Approve(context.Background(), sug.ID, nil, "therapist-1", nil)
	if err != nil {
		t.Fatalf("approve should survive a corrupt baseline: %v", err)
	}
	if outcome.Version.Version != 2 {
		t.Errorf("expected version 2, got %d", outcome.Version.Version)
	}

	refreshed, _ := f.plans.GetByID(context.Background(), planID)
	if _, err := plandoc.Parse(refreshed.CurrentContent); err != nil {
		t.Errorf("approval left unparseable content in place: %v", err)
	}
}

func TestReject(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)
	notes := "Changes do not match my session impression"

	rejected, err := f.svc.Reject(context.Background(), sug.ID, "therapist-1", &notes)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
	if rejected.TherapistNotes == nil || *rejected.TherapistNotes != notes {
		t.Error("therapist notes not recorded")
	}

	count, _ := f.plans.CountVersions(context.Background(), planID)
	if count != 1 {
		t.Errorf("reject must not version the plan, got %d versions", count)
	}
	if len(f.history.entries) != 0 {
		t.Error("reject must not write history")
	}
	if len(f.sessions.processed) != 0 {
		t.Error("reject must not mark the session processed")
	}
}

func TestReject_AfterApprove(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	if _, err := f.svc.Approve(context.Background(), sug.ID, nil, "therapist-1", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := f.svc.Reject(context.Background(), sug.ID, "therapist-2", nil)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if !strings.Contains(err.Error(), "APPROVED") {
		t.Errorf("error should name the terminal state: %v", err)
	}
}

func TestDiff_LatestPending(t *testing.T) {
	f, planID := newFixture(t)
	f.pendingSuggestion(t, planID)

	resp, err := f.svc.Diff(context.Background(), planID, nil)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !resp.HasSuggestion {
		t.Fatal("expected a pending suggestion")
	}
	if resp.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", resp.Status)
	}
	if len(resp.Diff.GoalChanges) != 1 {
		t.Fatalf("expected 1 goal change, got %d", len(resp.Diff.GoalChanges))
	}
	gc := resp.Diff.GoalChanges[0]
	if gc.CurrentStatus != plandoc.GoalInProgress || gc.SuggestedStatus != plandoc.GoalCompleted {
		t.Errorf("goal diff wrong: %s -> %s", gc.CurrentStatus, gc.SuggestedStatus)
	}
	if len(resp.Diff.NewGoals) != 1 {
		t.Errorf("expected 1 new goal in diff, got %d", len(resp.Diff.NewGoals))
	}
}

func TestDiff_NoPendingSuggestion(t *testing.T) {
	f, planID := newFixture(t)

	resp, err := f.svc.Diff(context.Background(), planID, nil)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if resp.HasSuggestion {
		t.Error("expected HasSuggestion false")
	}
	if resp.Diff != nil {
		t.Error("expected no diff payload")
	}
}

func TestDiff_ExplicitSuggestionMustBelongToPlan(t *testing.T) {
	f, planID := newFixture(t)
	sug := f.pendingSuggestion(t, planID)

	raw, _ := plandoc.Encode(planDoc())
	other := &treatmentplan.TreatmentPlan{PatientID: uuid.New(), CurrentContent: raw}
	if err := f.plans.Create(context.Background(), other); err != nil {
		t.Fatalf("seed second plan: %v", err)
	}

	_, err := f.svc.Diff(context.Background(), other.ID, &sug.ID)
	if !errors.Is(err, ErrSuggestionNotFound) {
		t.Fatalf("expected ErrSuggestionNotFound, got %v", err)
	}
}
