package treatmentplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/goalhistory"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/db"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/revision"
)

// ManualUpdateSummary is the change summary recorded for manual revisions.
const ManualUpdateSummary = "Manual Update"

// SessionMarker flips a session to processed once its changes land in the
// plan. Satisfied by the session repository.
type SessionMarker interface {
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	plans    Repository
	history  goalhistory.Repository
	sessions SessionMarker
	tx       db.TxRunner
	log      zerolog.Logger
}

func NewService(plans Repository, history goalhistory.Repository, sessions SessionMarker, tx db.TxRunner, log zerolog.Logger) *Service {
	return &Service{plans: plans, history: history, sessions: sessions, tx: tx, log: log}
}

// CreatePlan establishes a patient's treatment plan from a complete document.
// Each patient has at most one plan; a duplicate create fails with
// ErrPlanExists. The document, version 1 and the initial goal history rows
// commit together.
func (s *Service) CreatePlan(ctx context.Context, patientID uuid.UUID, doc *plandoc.Document, createdBy string) (*TreatmentPlan, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrInvalidContent)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: plan content is required", ErrInvalidContent)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContent, err)
	}

	raw, err := plandoc.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode plan content: %w", err)
	}

	plan := &TreatmentPlan{PatientID: patientID, CurrentContent: raw}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.plans.Create(txCtx, plan); err != nil {
			return err
		}

		version := &PlanVersion{
			PlanID:     plan.ID,
			Version:    1,
			Content:    raw,
			ChangeType: ChangeInitial,
			ChangeSummary: fmt.Sprintf(
				"Initial treatment plan created with %d goal(s) established",
				len(doc.ClinicalGoals)),
			CreatedBy: createdBy,
		}
		if err := s.plans.InsertVersion(txCtx, version); err != nil {
			return err
		}

		changes := revision.FromDocuments(nil, doc)
		return s.history.AppendAll(txCtx, historyEntries(plan.ID, changes, createdBy, nil))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("plan_id", plan.ID.String()).
		Str("patient_id", patientID.String()).
		Int("goals", len(doc.ClinicalGoals)).
		Msg("treatment plan created")
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) GetPlanForPatient(ctx context.Context, patientID uuid.UUID) (*TreatmentPlan, error) {
	return s.plans.GetByPatient(ctx, patientID)
}

func (s *Service) ListVersions(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*PlanVersion, int, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, 0, err
	}
	return s.plans.ListVersions(ctx, planID, limit, offset)
}

func (s *Service) GetVersion(ctx context.Context, planID uuid.UUID, version int) (*PlanVersion, error) {
	return s.plans.GetVersion(ctx, planID, version)
}

// SubmitManualRevision replaces a plan's content with a complete document
// supplied directly by the therapist, bypassing the suggestion workflow.
// The replacement is validated fail-closed; the comparison baseline is
// parsed fail-soft, so a corrupt stored document never blocks the write.
// Version append, content update, history rows and the optional
// session-processed flip commit as one transaction.
func (s *Service) SubmitManualRevision(ctx context.Context, planID uuid.UUID, doc *plandoc.Document, submittedBy string, sessionID *uuid.UUID) (*PlanVersion, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: plan content is required", ErrInvalidContent)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContent, err)
	}

	raw, err := plandoc.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode plan content: %w", err)
	}

	var version *PlanVersion
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		plan, err := s.plans.GetForUpdate(txCtx, planID)
		if err != nil {
			return err
		}

		baseline := s.parseBaseline(txCtx, plan)
		changes := revision.FromDocuments(baseline, doc)

		count, err := s.plans.CountVersions(txCtx, planID)
		if err != nil {
			return err
		}

		version = &PlanVersion{
			PlanID:        planID,
			Version:       count + 1,
			Content:       raw,
			ChangeType:    ChangeManual,
			ChangeSummary: ManualUpdateSummary,
			CreatedBy:     submittedBy,
		}
		if err := s.plans.InsertVersion(txCtx, version); err != nil {
			return err
		}
		if err := s.plans.UpdateContent(txCtx, planID, raw); err != nil {
			return err
		}
		if err := s.history.AppendAll(txCtx, historyEntries(planID, changes, submittedBy, sessionID)); err != nil {
			return err
		}

		if sessionID != nil {
			if err := s.sessions.MarkProcessed(txCtx, *sessionID); err != nil {
				return fmt.Errorf("mark session processed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("plan_id", planID.String()).
		Int("version", version.Version).
		Msg("manual revision applied")
	return version, nil
}

// parseBaseline decodes the plan's current content for change extraction.
// Unparseable content yields a nil baseline: every submitted goal then
// reads as newly created, which is the honest answer when the prior state
// cannot be trusted.
func (s *Service) parseBaseline(ctx context.Context, plan *TreatmentPlan) *plandoc.Document {
	baseline, err := plandoc.Parse(plan.CurrentContent)
	if err != nil {
		s.log.Warn().Err(err).Str("plan_id", plan.ID.String()).
			Msg("current plan content unparseable, comparing against empty baseline")
		return nil
	}
	return baseline
}

func historyEntries(planID uuid.UUID, changes []revision.GoalChange, changedBy string, sessionID *uuid.UUID) []*goalhistory.Entry {
	entries := make([]*goalhistory.Entry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, &goalhistory.Entry{
			PlanID:          planID,
			GoalID:          c.GoalID,
			GoalDescription: c.GoalDescription,
			PreviousStatus:  string(c.PreviousStatus),
			NewStatus:       string(c.NewStatus),
			ChangedBy:       changedBy,
			Reason:          c.Reason,
			SessionID:       sessionID,
		})
	}
	return entries
}

// IsNotFound reports whether err is one of this package's not-found
// sentinels, for handler status mapping.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) || errors.Is(err, ErrVersionNotFound)
}
