package goalhistory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// AppendAll writes every entry through the same connection, so callers
	// running inside a transaction get all-or-nothing behavior.
	AppendAll(ctx context.Context, entries []*Entry) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Entry, error)
	ListByGoal(ctx context.Context, planID uuid.UUID, goalID string) ([]*Entry, error)
}
