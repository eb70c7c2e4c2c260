package routine

import (
	"errors"

	"daybook/internal/model"
)

var ErrNotFound = errors.New("routine not found")

// Patch is a partial update. Nil pointers mean "no change". Setting
// Recurrence replaces the whole schedule shape.
type Patch struct {
	Title       *string
	Description *string
	Recurrence  model.Recurrence
	Time        *string
	Active      *bool
}

// Repo stores routines per scope. List returns oldest-created first, the
// order the original document store pushed snapshots in.
type Repo interface {
	Create(scope model.Scope, r model.Routine) (model.Routine, error)
	Get(scope model.Scope, id model.RoutineID) (model.Routine, error)
	Update(scope model.Scope, id model.RoutineID, p Patch) (model.Routine, error)
	Delete(scope model.Scope, id model.RoutineID) error
	List(scope model.Scope) ([]model.Routine, error)
}

func applyPatch(r *model.Routine, p Patch) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Recurrence != nil {
		r.Recurrence = p.Recurrence
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
}
