package task

import (
	"errors"

	"daybook/internal/dates"
	"daybook/internal/model"
)

var ErrNotFound = errors.New("task not found")

// Patch is a partial update. A nil pointer means "no change"; for DueDate
// a pointer to the zero Day clears the field.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	DueDate     *dates.Day      `json:"dueDate,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
}

type ListFilter struct {
	// Status: "" | "all" | "pending" | "done" | "due_today" | "upcoming" | "overdue"
	Status string
}

// Repo stores tasks per scope. List returns newest-created first, the
// order the original document store pushed snapshots in.
type Repo interface {
	Create(scope model.Scope, t model.Task) (model.Task, error)
	Get(scope model.Scope, id model.TaskID) (model.Task, error)
	Update(scope model.Scope, id model.TaskID, p Patch) (model.Task, error)
	Delete(scope model.Scope, id model.TaskID) error
	List(scope model.Scope, filter ListFilter) ([]model.Task, error)
}

func normalizeTask(t *model.Task) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.Priority = model.NormalizePriority(t.Priority)
}

func applyPatch(t *model.Task, p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = model.NormalizePriority(*p.Priority)
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			due := *p.DueDate
			t.DueDate = &due
		}
	}
	if p.Tags != nil {
		if *p.Tags == nil {
			t.Tags = []string{}
		} else {
			t.Tags = *p.Tags
		}
	}
}

func matchesFilter(t model.Task, filter ListFilter, today dates.Day) bool {
	var due dates.Day
	if t.DueDate != nil {
		due = *t.DueDate
	}
	switch normalizeStatus(filter.Status) {
	case "pending":
		return !t.Completed
	case "done":
		return t.Completed
	case "due_today":
		return !t.Completed && !due.IsZero() && due.Equal(today)
	case "overdue":
		return !t.Completed && !due.IsZero() && due.Before(today)
	case "upcoming":
		return !t.Completed && !due.IsZero() && due.After(today)
	default:
		return true
	}
}

func normalizeStatus(s string) string {
	switch s {
	case "pending", "done", "due_today", "overdue", "upcoming":
		return s
	}
	return "all"
}
