package project

import (
	"errors"
	"strings"
	"time"

	"daybook/internal/model"
)

var ErrNotFound = errors.New("project not found")

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Emoji       *string
	Color       *string
	Description *string
}

// Repo stores projects per user. Projects are the partition boundary
// for tasks and routines, so they are never themselves project-scoped.
type Repo interface {
	Create(userID string, p model.Project) (model.Project, error)
	Get(userID string, id model.ProjectID) (model.Project, error)
	Update(userID string, id model.ProjectID, patch Patch) (model.Project, error)
	Delete(userID string, id model.ProjectID) error
	List(userID string) ([]model.Project, error)
}

func normalizeProject(p model.Project, now time.Time) model.Project {
	if p.ID == "" {
		p.ID = model.NewProjectID()
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return p
}

func applyPatch(p model.Project, patch Patch) model.Project {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Emoji != nil {
		p.Emoji = *patch.Emoji
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	return p
}
