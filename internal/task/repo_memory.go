package task

import (
	"sort"
	"sync"
	"time"

	"daybook/internal/dates"
	"daybook/internal/model"
)

// MemoryRepo keeps tasks in process memory. It backs tests and ephemeral
// runs; the SQLite repo is the durable equivalent.
type MemoryRepo struct {
	mu     sync.RWMutex
	scopes map[string]map[model.TaskID]model.Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{scopes: map[string]map[model.TaskID]model.Task{}}
}

func (r *MemoryRepo) scopeLocked(scope model.Scope) map[model.TaskID]model.Task {
	key := scope.Key()
	m, ok := r.scopes[key]
	if !ok {
		m = map[model.TaskID]model.Task{}
		r.scopes[key] = m
	}
	return m
}

func (r *MemoryRepo) Create(scope model.Scope, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t.ID = model.NewTaskID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.scopeLocked(scope)[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(scope model.Scope, id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.scopes[scope.Key()][id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(scope model.Scope, id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.scopeLocked(scope)
	t, ok := m[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}

	applyPatch(&t, p)
	t.UpdatedAt = time.Now()
	normalizeTask(&t)

	m[id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(scope model.Scope, id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.scopeLocked(scope)
	if _, ok := m[id]; !ok {
		return ErrNotFound
	}
	delete(m, id)
	return nil
}

func (r *MemoryRepo) List(scope model.Scope, filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := dates.Today()
	out := []model.Task{}
	for _, t := range r.scopes[scope.Key()] {
		normalizeTask(&t)
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
