package goalhistory

import (
	"context"

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

const entryCols = `id, plan_id, goal_id, goal_description, previous_status,
	new_status, changed_at, changed_by, reason, session_id`

func (r *repoPG) Append(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO goal_history (id, plan_id, goal_id, goal_description,
			previous_status, new_status, changed_by, reason, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING changed_at`,
		e.ID, e.PlanID, e.GoalID, e.GoalDescription,
		e.PreviousStatus, e.NewStatus, e.ChangedBy, e.Reason, e.SessionID,
	).Scan(&e.ChangedAt)
}

func (r *repoPG) AppendAll(ctx context.Context, entries []*Entry) error {
	for _, e := range entries {
		if err := r.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM goal_history
		WHERE plan_id = $1 ORDER BY changed_at ASC, goal_id ASC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *repoPG) ListByGoal(ctx context.Context, planID uuid.UUID, goalID string) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM goal_history
		WHERE plan_id = $1 AND goal_id = $2 ORDER BY changed_at ASC`, planID, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*Entry, error) {
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PlanID, &e.GoalID, &e.GoalDescription,
			&e.PreviousStatus, &e.NewStatus, &e.ChangedAt, &e.ChangedBy,
			&e.Reason, &e.SessionID); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
