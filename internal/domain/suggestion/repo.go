package suggestion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	// ErrDuplicateSession surfaces when a second suggestion is inserted
	// for a session that already has one; each session produces at most
	// one suggestion.
	ErrDuplicateSession = errors.New("session already has a suggestion")
	// ErrAlreadyReviewed rejects a review decision against a suggestion
	// that has already reached a terminal state.
	ErrAlreadyReviewed = errors.New("suggestion already reviewed")
	// ErrReviewConflict surfaces when a concurrent reviewer won the race:
	// the guarded UPDATE found the row no longer pending.
	ErrReviewConflict = errors.New("suggestion reviewed concurrently")
	// ErrInvalidChangeSet marks caller mistakes in a submitted change set so
	// handlers can distinguish them from infrastructure failures.
	ErrInvalidChangeSet = errors.New("invalid change set")
)

type Repository interface {
	Create(ctx context.Context, s *Suggestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Suggestion, error)
	// GetForUpdate locks the suggestion row for the duration of the
	// surrounding transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Suggestion, error)
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*Suggestion, error)
	ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*Suggestion, int, error)
	LatestPendingForPlan(ctx context.Context, planID uuid.UUID) (*Suggestion, error)
	// MarkReviewed moves a pending suggestion to a terminal status. The
	// UPDATE is guarded on status = PENDING; a zero-row result means
	// another reviewer got there first and yields ErrReviewConflict.
	MarkReviewed(ctx context.Context, id uuid.UUID, status Status, reviewedBy string, therapistNotes *string, reviewedAt time.Time) error
}
