package suggestion

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

const suggestionCols = `id, plan_id, session_id, status, suggested_changes,
	session_summary, progress_notes, reviewed_at, reviewed_by,
	therapist_notes, created_at`

func scanSuggestion(row pgx.Row) (*Suggestion, error) {
	var s Suggestion
	err := row.Scan(&s.ID, &s.PlanID, &s.SessionID, &s.Status,
		&s.SuggestedChanges, &s.SessionSummary, &s.ProgressNotes,
		&s.ReviewedAt, &s.ReviewedBy, &s.TherapistNotes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

func (r *repoPG) Create(ctx context.Context, s *Suggestion) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO suggestion (id, plan_id, session_id, status,
			suggested_changes, session_summary, progress_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		s.ID, s.PlanID, s.SessionID, s.Status,
		s.SuggestedChanges, s.SessionSummary, s.ProgressNotes,
	).Scan(&s.CreatedAt)
	if isUniqueViolation(err, "suggestion_session_id_key") {
		return ErrDuplicateSession
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	return scanSuggestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+suggestionCols+` FROM suggestion WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	return scanSuggestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+suggestionCols+` FROM suggestion WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) GetBySession(ctx context.Context, sessionID uuid.UUID) (*Suggestion, error) {
	return scanSuggestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+suggestionCols+` FROM suggestion WHERE session_id = $1`, sessionID))
}

func (r *repoPG) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*Suggestion, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM suggestion WHERE plan_id = $1`, planID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+suggestionCols+` FROM suggestion
		WHERE plan_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, planID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) LatestPendingForPlan(ctx context.Context, planID uuid.UUID) (*Suggestion, error) {
	return scanSuggestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+suggestionCols+` FROM suggestion
		WHERE plan_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC
		LIMIT 1`, planID))
}

func (r *repoPG) MarkReviewed(ctx context.Context, id uuid.UUID, status Status, reviewedBy string, therapistNotes *string, reviewedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE suggestion
		SET status = $2, reviewed_by = $3, therapist_notes = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'PENDING'`,
		id, status, reviewedBy, therapistNotes, reviewedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewConflict
	}
	return nil
}
