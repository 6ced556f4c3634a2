package treatmentplan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound    = errors.New("treatment plan not found")
	ErrPlanExists      = errors.New("patient already has a treatment plan")
	ErrVersionNotFound = errors.New("plan version not found")
	// ErrVersionConflict surfaces when two writers race to append the same
	// version number; the (plan_id, version) unique index rejects the loser.
	ErrVersionConflict = errors.New("plan version conflict")
	// ErrInvalidContent marks caller mistakes in submitted plan content so
	// handlers can distinguish them from infrastructure failures.
	ErrInvalidContent = errors.New("invalid plan content")
)

type Repository interface {
	Create(ctx context.Context, p *TreatmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*TreatmentPlan, error)
	// GetForUpdate locks the plan row for the duration of the surrounding
	// transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error
	UpdateContentAndReviewDates(ctx context.Context, id uuid.UUID, content []byte, lastReviewedAt, nextReviewDue time.Time) error

	InsertVersion(ctx context.Context, v *PlanVersion) error
	LatestVersion(ctx context.Context, planID uuid.UUID) (*PlanVersion, error)
	CountVersions(ctx context.Context, planID uuid.UUID) (int, error)
	ListVersions(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*PlanVersion, int, error)
	GetVersion(ctx context.Context, planID uuid.UUID, version int) (*PlanVersion, error)
}
