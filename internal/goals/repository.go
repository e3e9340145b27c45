package goals

import (
	"context"
	"errors"

	"goal-tracker-backend/internal/progress"
)

var (
	ErrNotFound      = errors.New("goal not found")
	ErrDuplicateID   = errors.New("goal id already used by owner")
	ErrOwnerNotFound = errors.New("goal owner not found")
)

// Repository persists goals keyed by (owner, goal id). List returns goals
// in insertion order.
type Repository interface {
	Create(ctx context.Context, ownerID string, g *Goal) error
	// Update rewrites the definition fields of g, leaving its progress.
	Update(ctx context.Context, ownerID string, g *Goal) error
	SetProgress(ctx context.Context, ownerID, goalID string, p progress.Progress) error
	Delete(ctx context.Context, ownerID, goalID string) error
	Get(ctx context.Context, ownerID, goalID string) (*Goal, error)
	List(ctx context.Context, ownerID string) ([]Goal, error)
}
