package routine

import (
	"slices"

	"daybook/internal/dates"
	"daybook/internal/model"
)

// IsDueOn reports whether the routine should spawn a task instance on the
// given calendar day. Inactive routines are never due. The recurrence
// variant is resolved at load time, so no mode inference happens here;
// malformed shapes degrade to "not due" rather than failing.
func IsDueOn(r model.Routine, day dates.Day) bool {
	if !r.Active {
		return false
	}

	switch rec := r.Recurrence.(type) {
	case model.Interval:
		every := rec.Every
		if every < 1 {
			every = 1
		}
		if rec.Start.IsZero() || day.Before(rec.Start) {
			return false
		}
		return day.DaysSince(rec.Start)%every == 0

	case model.Weekly:
		return slices.Contains(rec.Days, day.Key())
	}

	return false
}

// DueOn filters routines down to the ones due on day.
func DueOn(routines []model.Routine, day dates.Day) []model.Routine {
	out := []model.Routine{}
	for _, r := range routines {
		if IsDueOn(r, day) {
			out = append(out, r)
		}
	}
	return out
}
