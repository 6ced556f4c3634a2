package treatmentplan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `id, patient_id, current_content, last_reviewed_at,
	next_review_due, created_at, updated_at`

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.CurrentContent,
		&p.LastReviewedAt, &p.NextReviewDue, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isUniqueViolation reports whether err is a 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

func (r *repoPG) Create(ctx context.Context, p *TreatmentPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment_plan (id, patient_id, current_content)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.CurrentContent,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err, "treatment_plan_patient_id_key") {
		return ErrPlanExists
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE patient_id = $1`, patientID))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan SET current_content = $2, updated_at = NOW()
		WHERE id = $1`, id, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *repoPG) UpdateContentAndReviewDates(ctx context.Context, id uuid.UUID, content []byte, lastReviewedAt, nextReviewDue time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan
		SET current_content = $2, last_reviewed_at = $3, next_review_due = $4,
			updated_at = NOW()
		WHERE id = $1`, id, content, lastReviewedAt, nextReviewDue)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

const versionCols = `id, plan_id, version, content, change_type,
	change_summary, source_suggestion_id, created_by, created_at`

func scanVersion(row pgx.Row) (*PlanVersion, error) {
	var v PlanVersion
	err := row.Scan(&v.ID, &v.PlanID, &v.Version, &v.Content, &v.ChangeType,
		&v.ChangeSummary, &v.SourceSuggestionID, &v.CreatedBy, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repoPG) InsertVersion(ctx context.Context, v *PlanVersion) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO plan_version (id, plan_id, version, content, change_type,
			change_summary, source_suggestion_id, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		v.ID, v.PlanID, v.Version, v.Content, v.ChangeType,
		v.ChangeSummary, v.SourceSuggestionID, v.CreatedBy,
	).Scan(&v.CreatedAt)
	if isUniqueViolation(err, "plan_version_plan_id_version_key") {
		return ErrVersionConflict
	}
	return err
}

func (r *repoPG) LatestVersion(ctx context.Context, planID uuid.UUID) (*PlanVersion, error) {
	return scanVersion(r.conn(ctx).QueryRow(ctx, `
		SELECT `+versionCols+` FROM plan_version
		WHERE plan_id = $1 ORDER BY version DESC LIMIT 1`, planID))
}

func (r *repoPG) CountVersions(ctx context.Context, planID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM plan_version WHERE plan_id = $1`, planID).Scan(&n)
	return n, err
}

func (r *repoPG) ListVersions(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*PlanVersion, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM plan_version WHERE plan_id = $1`, planID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+versionCols+` FROM plan_version
		WHERE plan_id = $1 ORDER BY version DESC LIMIT $2 OFFSET $3`,
		planID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PlanVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) GetVersion(ctx context.Context, planID uuid.UUID, version int) (*PlanVersion, error) {
	return scanVersion(r.conn(ctx).QueryRow(ctx, `
		SELECT `+versionCols+` FROM plan_version
		WHERE plan_id = $1 AND version = $2`, planID, version))
}
