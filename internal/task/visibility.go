package task

import (
	"daybook/internal/dates"
	"daybook/internal/model"
)

// VisibleOn reports whether a task should be displayed when browsing the
// given calendar day.
//
// A task with a due date stays visible on every day from its creation day
// through the due day, inclusive, so pending work keeps showing up in day
// and month views until it is due. Without a known creation day it only
// shows on the due day (optimistic local state before the server
// timestamp arrives). Without a due date it only shows on its creation
// day.
func VisibleOn(t model.Task, day dates.Day) bool {
	created := t.CreatedDay()

	if t.DueDate != nil && !t.DueDate.IsZero() {
		due := *t.DueDate
		if !created.IsZero() {
			return !day.Before(created) && !day.After(due)
		}
		return day.Equal(due)
	}

	if created.IsZero() {
		return false
	}
	return day.Equal(created)
}
