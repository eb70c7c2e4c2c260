package model

import (
	"time"

	"daybook/internal/dates"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NormalizePriority maps unknown or empty values to the default.
func NormalizePriority(p Priority) Priority {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	}
	return PriorityMedium
}

// Task is a concrete to-do item. CreatedAt/UpdatedAt are assigned by the
// storage layer; a zero CreatedAt means the server timestamp has not been
// observed yet (optimistic local state).
type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *dates.Day `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`

	IsRoutineGenerated bool       `json:"isRoutineGenerated"`
	RoutineID          *RoutineID `json:"routineId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatedDay is the task's creation day, or a zero Day when the server
// timestamp is not known yet.
func (t Task) CreatedDay() dates.Day {
	if t.CreatedAt.IsZero() {
		return dates.Day{}
	}
	return dates.Normalize(t.CreatedAt)
}

// TaskUpsert is the creation payload accepted at the HTTP boundary.
type TaskUpsert struct {
	Title              string     `json:"title" validate:"required,min=1,max=500"`
	Description        string     `json:"description" validate:"max=4000"`
	Priority           Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate            *dates.Day `json:"dueDate"`
	Tags               []string   `json:"tags" validate:"max=32,dive,min=1,max=64"`
	IsRoutineGenerated bool       `json:"isRoutineGenerated"`
	RoutineID          *RoutineID `json:"routineId"`
}

// Task builds an unsaved Task from the payload.
func (in TaskUpsert) Task() Task {
	return Task{
		Title:              in.Title,
		Description:        in.Description,
		Priority:           NormalizePriority(in.Priority),
		DueDate:            in.DueDate,
		Tags:               in.Tags,
		IsRoutineGenerated: in.IsRoutineGenerated,
		RoutineID:          in.RoutineID,
	}
}
