package project

import (
	"sort"
	"sync"
	"time"

	"daybook/internal/model"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]map[model.ProjectID]model.Project
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: map[string]map[model.ProjectID]model.Project{}}
}

func (r *MemoryRepo) bucket(userID string) map[model.ProjectID]model.Project {
	b, ok := r.users[userID]
	if !ok {
		b = map[model.ProjectID]model.Project{}
		r.users[userID] = b
	}
	return b
}

func (r *MemoryRepo) Create(userID string, p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p = normalizeProject(p, time.Now())
	r.bucket(userID)[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) Get(userID string, id model.ProjectID) (model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.users[userID][id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Update(userID string, id model.ProjectID, patch Patch) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[userID][id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	p = applyPatch(p, patch)
	r.users[userID][id] = p
	return p, nil
}

func (r *MemoryRepo) Delete(userID string, id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID][id]; !ok {
		return ErrNotFound
	}
	delete(r.users[userID], id)
	return nil
}

func (r *MemoryRepo) List(userID string) ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Project, 0, len(r.users[userID]))
	for _, p := range r.users[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
