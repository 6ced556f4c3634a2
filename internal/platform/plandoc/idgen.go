package plandoc

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator supplies ids for goals synthesized by the merge engine. The
// engine takes it as a parameter so merges stay deterministic under test.
type IDGenerator interface {
	NewGoalID() string
}

type uuidIDGenerator struct{}

func (uuidIDGenerator) NewGoalID() string {
	return fmt.Sprintf("goal-%s", uuid.NewString())
}

// NewUUIDGenerator returns the production IDGenerator backed by random UUIDs.
func NewUUIDGenerator() IDGenerator { return uuidIDGenerator{} }
