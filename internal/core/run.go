package core

import (
	"time"

	"github.com/google/uuid"
)

// RunContext is the state scoped to a single import run. It is created by
// Submit and discarded with it; nothing in it outlives the run. A
// RunContext is used by one goroutine at a time.
type RunContext struct {
	ID         string
	Kind       EntityKind
	FileName   string
	StartedAt  time.Time
	Visibility VisibilityTierSet

	parents map[string]parentEntry
	created []CreatedParent
}

type parentEntry struct {
	id  string
	err error
}

// NewRunContext starts a run for kind with a fresh run ID.
func NewRunContext(kind EntityKind, visibility VisibilityTierSet) *RunContext {
	return &RunContext{
		ID:         uuid.NewString(),
		Kind:       kind,
		StartedAt:  time.Now(),
		Visibility: visibility.Clone(),
		parents:    make(map[string]parentEntry),
	}
}

// CreatedParents returns the parents created so far, in creation order.
func (r *RunContext) CreatedParents() []CreatedParent {
	out := make([]CreatedParent, len(r.created))
	copy(out, r.created)
	return out
}

// Elapsed returns the time since the run started.
func (r *RunContext) Elapsed() time.Duration {
	return time.Since(r.StartedAt)
}
