// Package agenda assembles the per-day view: visible tasks split by
// completion, plus the routines due that day.
package agenda

import (
	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/routine"
	"daybook/internal/task"
)

// View is one day's agenda for a scope.
type View struct {
	Date     dates.Day       `json:"date"`
	Pending  []model.Task    `json:"pending"`
	Done     []model.Task    `json:"done"`
	Routines []model.Routine `json:"routines"`
	Progress Progress        `json:"progress"`
}

type Progress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// Build filters the scope's tasks down to those visible on the day and
// pairs them with the routines due that day.
func Build(tasks []model.Task, routines []model.Routine, day dates.Day) View {
	v := View{
		Date:     day,
		Pending:  []model.Task{},
		Done:     []model.Task{},
		Routines: routine.DueOn(routines, day),
	}
	for _, t := range tasks {
		if !task.VisibleOn(t, day) {
			continue
		}
		if t.Completed {
			v.Done = append(v.Done, t)
		} else {
			v.Pending = append(v.Pending, t)
		}
	}
	v.Progress.Total = len(v.Pending) + len(v.Done)
	v.Progress.Completed = len(v.Done)
	if v.Progress.Total > 0 {
		v.Progress.Percent = float64(v.Progress.Completed) / float64(v.Progress.Total) * 100
	}
	return v
}
