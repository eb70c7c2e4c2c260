package routine

import (
	"sort"
	"sync"
	"time"

	"daybook/internal/dates"
	"daybook/internal/model"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	scopes map[string]map[model.RoutineID]model.Routine
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{scopes: map[string]map[model.RoutineID]model.Routine{}}
}

func (r *MemoryRepo) scopeLocked(scope model.Scope) map[model.RoutineID]model.Routine {
	key := scope.Key()
	m, ok := r.scopes[key]
	if !ok {
		m = map[model.RoutineID]model.Routine{}
		r.scopes[key] = m
	}
	return m
}

func (r *MemoryRepo) Create(scope model.Scope, rt model.Routine) (model.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt.ID = model.NewRoutineID()
	rt.CreatedAt = time.Now()
	if iv, ok := rt.Recurrence.(model.Interval); ok && iv.Start.IsZero() {
		iv.Start = dates.Normalize(rt.CreatedAt)
		rt.Recurrence = iv
	}

	r.scopeLocked(scope)[rt.ID] = rt
	return rt, nil
}

func (r *MemoryRepo) Get(scope model.Scope, id model.RoutineID) (model.Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.scopes[scope.Key()][id]
	if !ok {
		return model.Routine{}, ErrNotFound
	}
	return rt, nil
}

func (r *MemoryRepo) Update(scope model.Scope, id model.RoutineID, p Patch) (model.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.scopeLocked(scope)
	rt, ok := m[id]
	if !ok {
		return model.Routine{}, ErrNotFound
	}

	applyPatch(&rt, p)
	m[id] = rt
	return rt, nil
}

func (r *MemoryRepo) Delete(scope model.Scope, id model.RoutineID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.scopeLocked(scope)
	if _, ok := m[id]; !ok {
		return ErrNotFound
	}
	delete(m, id)
	return nil
}

func (r *MemoryRepo) List(scope model.Scope) ([]model.Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Routine{}
	for _, rt := range r.scopes[scope.Key()] {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
