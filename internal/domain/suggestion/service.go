package suggestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/goalhistory"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/treatmentplan"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/db"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/revision"
)

// Reason recorded on history rows for goals a suggestion introduced.
const sessionNewGoalReason = "New goal added from session analysis"

// SessionMarker flips a session to processed once its suggestion is
// approved. Satisfied by the session repository.
type SessionMarker interface {
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	suggestions    Repository
	plans          treatmentplan.Repository
	history        goalhistory.Repository
	sessions       SessionMarker
	tx             db.TxRunner
	ids            plandoc.IDGenerator
	reviewInterval time.Duration
	log            zerolog.Logger
}

func NewService(
	suggestions Repository,
	plans treatmentplan.Repository,
	history goalhistory.Repository,
	sessions SessionMarker,
	tx db.TxRunner,
	ids plandoc.IDGenerator,
	reviewInterval time.Duration,
	log zerolog.Logger,
) *Service {
	if reviewInterval <= 0 {
		reviewInterval = 90 * 24 * time.Hour
	}
	return &Service{
		suggestions:    suggestions,
		plans:          plans,
		history:        history,
		sessions:       sessions,
		tx:             tx,
		ids:            ids,
		reviewInterval: reviewInterval,
		log:            log,
	}
}

// Create freezes a session's change-set as a pending suggestion. The
// change-set is validated wholesale before anything is stored. Creation is
// idempotent per session: a repeat submission returns the existing
// suggestion unchanged, whatever its current status. The returned bool
// reports whether a new row was inserted.
func (s *Service) Create(ctx context.Context, planID, sessionID uuid.UUID, cs revision.ChangeSet, sessionSummary, progressNotes string) (*Suggestion, bool, error) {
	if err := cs.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidChangeSet, err)
	}
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, false, err
	}

	if existing, err := s.suggestions.GetBySession(ctx, sessionID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrSuggestionNotFound) {
		return nil, false, err
	}

	raw, err := json.Marshal(cs)
	if err != nil {
		return nil, false, fmt.Errorf("encode change set: %w", err)
	}

	sug := &Suggestion{
		PlanID:           planID,
		SessionID:        sessionID,
		Status:           StatusPending,
		SuggestedChanges: raw,
		SessionSummary:   sessionSummary,
		ProgressNotes:    progressNotes,
	}
	err = s.suggestions.Create(ctx, sug)
	if errors.Is(err, ErrDuplicateSession) {
		// Lost a creation race for the same session; the earlier row wins.
		existing, getErr := s.suggestions.GetBySession(ctx, sessionID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.log.Info().
		Str("suggestion_id", sug.ID.String()).
		Str("plan_id", planID.String()).
		Str("session_id", sessionID.String()).
		Msg("suggestion created")
	return sug, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	return s.suggestions.GetByID(ctx, id)
}

func (s *Service) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*Suggestion, int, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, 0, err
	}
	return s.suggestions.ListByPlan(ctx, planID, limit, offset)
}

// ReviewOutcome reports what an approval produced.
type ReviewOutcome struct {
	Suggestion *Suggestion                `json:"suggestion"`
	Version    *treatmentplan.PlanVersion `json:"version"`
}

// Approve applies a pending suggestion's frozen change-set to its plan,
// with optional reviewer overrides replacing whole change-set fields.
// Everything commits as one transaction: the terminal status flip, the new
// plan version, the updated current content with advanced review dates, the
// goal history rows and the session-processed flip. The suggestion and plan
// rows are locked for the duration; a concurrent review loses on the
// pending-status re-check.
//
// The baseline document is parsed fail-soft: a corrupt stored plan merges
// against an empty baseline rather than blocking the review.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, overrides *revision.Overrides, reviewedBy string, therapistNotes *string) (*ReviewOutcome, error) {
	var outcome *ReviewOutcome
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sug, err := s.suggestions.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if sug.Status != StatusPending {
			return fmt.Errorf("%w: suggestion is %s", ErrAlreadyReviewed, sug.Status)
		}

		plan, err := s.plans.GetForUpdate(txCtx, sug.PlanID)
		if err != nil {
			return err
		}

		var cs revision.ChangeSet
		if err := json.Unmarshal(sug.SuggestedChanges, &cs); err != nil {
			return fmt.Errorf("decode suggested changes: %w", err)
		}

		baseline := s.parseBaseline(plan)
		effective := cs
		if overrides != nil {
			effective = overrides.Resolve(cs)
		}

		result := revision.ApplyChanges(baseline, cs, overrides, s.ids)
		changes := revision.FromChangeSet(baseline, effective)

		raw, err := plandoc.Encode(&result.UpdatedPlan)
		if err != nil {
			return fmt.Errorf("encode merged plan: %w", err)
		}

		status := StatusApproved
		if overrides != nil && !overrides.IsEmpty() {
			status = StatusModified
		}

		now := time.Now().UTC()
		if err := s.suggestions.MarkReviewed(txCtx, id, status, reviewedBy, therapistNotes, now); err != nil {
			return err
		}

		count, err := s.plans.CountVersions(txCtx, sug.PlanID)
		if err != nil {
			return err
		}
		version := &treatmentplan.PlanVersion{
			PlanID:             sug.PlanID,
			Version:            count + 1,
			Content:            raw,
			ChangeType:         treatmentplan.ChangeSessionUpdate,
			ChangeSummary:      result.ChangeSummary,
			SourceSuggestionID: &sug.ID,
			CreatedBy:          reviewedBy,
		}
		if err := s.plans.InsertVersion(txCtx, version); err != nil {
			return err
		}
		if err := s.plans.UpdateContentAndReviewDates(txCtx, sug.PlanID, raw, now, now.Add(s.reviewInterval)); err != nil {
			return err
		}

		entries := s.historyEntries(sug, &result.UpdatedPlan, changes, result.NewGoalIDs, reviewedBy)
		if err := s.history.AppendAll(txCtx, entries); err != nil {
			return err
		}

		if err := s.sessions.MarkProcessed(txCtx, sug.SessionID); err != nil {
			return fmt.Errorf("mark session processed: %w", err)
		}

		sug.Status = status
		sug.ReviewedAt = &now
		sug.ReviewedBy = &reviewedBy
		sug.TherapistNotes = therapistNotes
		outcome = &ReviewOutcome{Suggestion: sug, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("suggestion_id", id.String()).
		Str("plan_id", outcome.Suggestion.PlanID.String()).
		Int("version", outcome.Version.Version).
		Str("status", string(outcome.Suggestion.Status)).
		Msg("suggestion approved")
	return outcome, nil
}

// Reject moves a pending suggestion to REJECTED. The plan, its versions and
// its history are untouched; only the suggestion row changes.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reviewedBy string, therapistNotes *string) (*Suggestion, error) {
	var rejected *Suggestion
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sug, err := s.suggestions.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if sug.Status != StatusPending {
			return fmt.Errorf("%w: suggestion is %s", ErrAlreadyReviewed, sug.Status)
		}

		now := time.Now().UTC()
		if err := s.suggestions.MarkReviewed(txCtx, id, StatusRejected, reviewedBy, therapistNotes, now); err != nil {
			return err
		}

		sug.Status = StatusRejected
		sug.ReviewedAt = &now
		sug.ReviewedBy = &reviewedBy
		sug.TherapistNotes = therapistNotes
		rejected = sug
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("suggestion_id", id.String()).
		Str("plan_id", rejected.PlanID.String()).
		Msg("suggestion rejected")
	return rejected, nil
}

// DiffResponse is the review display payload: what approving a suggestion
// would change on the live plan. HasSuggestion false means there is nothing
// to review and the remaining fields are empty.
type DiffResponse struct {
	HasSuggestion bool           `json:"has_suggestion"`
	SuggestionID  *uuid.UUID     `json:"suggestion_id,omitempty"`
	Status        Status         `json:"status,omitempty"`
	Diff          *revision.Diff `json:"diff,omitempty"`
}

// Diff compares a suggestion's frozen change-set against the plan's live
// content. With no explicit suggestion id the latest pending suggestion is
// used; a plan with no pending suggestion yields HasSuggestion false rather
// than an error.
func (s *Service) Diff(ctx context.Context, planID uuid.UUID, suggestionID *uuid.UUID) (*DiffResponse, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	var sug *Suggestion
	if suggestionID != nil {
		sug, err = s.suggestions.GetByID(ctx, *suggestionID)
		if err != nil {
			return nil, err
		}
		if sug.PlanID != planID {
			return nil, ErrSuggestionNotFound
		}
	} else {
		sug, err = s.suggestions.LatestPendingForPlan(ctx, planID)
		if errors.Is(err, ErrSuggestionNotFound) {
			return &DiffResponse{HasSuggestion: false}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	var cs revision.ChangeSet
	if err := json.Unmarshal(sug.SuggestedChanges, &cs); err != nil {
		return nil, fmt.Errorf("decode suggested changes: %w", err)
	}

	diff := revision.BuildDiff(s.parseBaseline(plan), cs)
	return &DiffResponse{
		HasSuggestion: true,
		SuggestionID:  &sug.ID,
		Status:        sug.Status,
		Diff:          &diff,
	}, nil
}

func (s *Service) parseBaseline(plan *treatmentplan.TreatmentPlan) *plandoc.Document {
	baseline, err := plandoc.Parse(plan.CurrentContent)
	if err != nil {
		s.log.Warn().Err(err).Str("plan_id", plan.ID.String()).
			Msg("current plan content unparseable, comparing against empty baseline")
		return nil
	}
	return baseline
}

// historyEntries builds the goal history rows an approval produces: one per
// status change the effective change-set made, plus one creation row per
// goal the merge introduced.
func (s *Service) historyEntries(sug *Suggestion, merged *plandoc.Document, changes []revision.GoalChange, newGoalIDs []string, changedBy string) []*goalhistory.Entry {
	entries := make([]*goalhistory.Entry, 0, len(changes)+len(newGoalIDs))
	sessionID := sug.SessionID
	for _, c := range changes {
		entries = append(entries, &goalhistory.Entry{
			PlanID:          sug.PlanID,
			GoalID:          c.GoalID,
			GoalDescription: c.GoalDescription,
			PreviousStatus:  string(c.PreviousStatus),
			NewStatus:       string(c.NewStatus),
			ChangedBy:       changedBy,
			Reason:          c.Reason,
			SessionID:       &sessionID,
		})
	}
	for _, id := range newGoalIDs {
		e := &goalhistory.Entry{
			PlanID:         sug.PlanID,
			GoalID:         id,
			PreviousStatus: string(revision.StatusNew),
			NewStatus:      string(plandoc.GoalInProgress),
			ChangedBy:      changedBy,
			Reason:         sessionNewGoalReason,
			SessionID:      &sessionID,
		}
		if g, ok := merged.Goal(id); ok {
			e.GoalDescription = g.Description
			e.NewStatus = string(g.Status)
		}
		entries = append(entries, e)
	}
	return entries
}

// IsNotFound reports whether err maps to a 404 for handlers.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSuggestionNotFound) || treatmentplan.IsNotFound(err)
}
