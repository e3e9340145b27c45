package goals

import (
	"context"
	"slices"
	"sync"

	"goal-tracker-backend/internal/progress"
)

type goalKey struct {
	owner string
	id    string
}

// MemoryRepository keeps goals in a table keyed by (owner, id) with a
// per-owner id list for ordering.
type MemoryRepository struct {
	mu    sync.RWMutex
	goals map[goalKey]Goal
	order map[string][]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		goals: make(map[goalKey]Goal),
		order: make(map[string][]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, ownerID string, g *Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := goalKey{ownerID, g.ID}
	if _, ok := r.goals[k]; ok {
		return ErrDuplicateID
	}
	r.goals[k] = *g
	r.order[ownerID] = append(r.order[ownerID], g.ID)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, ownerID string, g *Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := goalKey{ownerID, g.ID}
	cur, ok := r.goals[k]
	if !ok {
		return ErrNotFound
	}
	cur.Name = g.Name
	cur.GoalType = g.GoalType
	cur.TargetValue = g.TargetValue
	cur.StartDate = g.StartDate
	cur.EndDate = g.EndDate
	r.goals[k] = cur
	return nil
}

func (r *MemoryRepository) SetProgress(ctx context.Context, ownerID, goalID string, p progress.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := goalKey{ownerID, goalID}
	cur, ok := r.goals[k]
	if !ok {
		return ErrNotFound
	}
	cur.Progress = p
	r.goals[k] = cur
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := goalKey{ownerID, goalID}
	if _, ok := r.goals[k]; !ok {
		return ErrNotFound
	}
	delete(r.goals, k)
	r.order[ownerID] = slices.DeleteFunc(r.order[ownerID], func(id string) bool { return id == goalID })
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, ownerID, goalID string) (*Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[goalKey{ownerID, goalID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (r *MemoryRepository) List(ctx context.Context, ownerID string) ([]Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.order[ownerID]
	out := make([]Goal, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.goals[goalKey{ownerID, id}])
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
