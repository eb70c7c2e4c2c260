package model

import (
	"encoding/json"
	"time"

	"daybook/internal/dates"
)

// Recurrence is the routine's schedule shape. Exactly one variant is
// authoritative per routine; legacy untagged records are resolved into a
// variant at the storage boundary (see ResolveRecurrence) so evaluation
// never has to re-infer the mode.
type Recurrence interface {
	Mode() RecurrenceMode
}

type RecurrenceMode string

const (
	ModeWeekly   RecurrenceMode = "weekly"
	ModeInterval RecurrenceMode = "interval"
)

// Weekly recurs on a fixed set of weekdays. An empty set never matches.
type Weekly struct {
	Days []dates.Weekday
}

func (Weekly) Mode() RecurrenceMode { return ModeWeekly }

// Interval recurs every N days from a start anchor.
type Interval struct {
	Every int
	Start dates.Day
}

func (Interval) Mode() RecurrenceMode { return ModeInterval }

// Routine is a recurring task template.
type Routine struct {
	ID          RoutineID
	Title       string
	Description string
	Recurrence  Recurrence
	// Time is an advisory "HH:MM" display hint; nothing is scheduled off it.
	Time      string
	Active    bool
	CreatedAt time.Time
}

// ResolveRecurrence normalizes a stored record into a Recurrence variant.
// Records written before the mode field existed are inferred: a non-empty
// day list means weekly, a positive interval means interval. An interval
// routine without a start anchor falls back to its creation time.
func ResolveRecurrence(mode RecurrenceMode, days []dates.Weekday, intervalDays int, start dates.Day, createdAt time.Time) Recurrence {
	if start.IsZero() && !createdAt.IsZero() {
		start = dates.Normalize(createdAt)
	}
	switch {
	case mode == ModeInterval:
		if intervalDays < 1 {
			intervalDays = 1
		}
		return Interval{Every: intervalDays, Start: start}
	case mode == ModeWeekly:
		return Weekly{Days: days}
	case len(days) > 0:
		return Weekly{Days: days}
	case intervalDays > 0:
		return Interval{Every: intervalDays, Start: start}
	}
	return Weekly{Days: days}
}

// routineWire is the persisted/JSON shape of a routine, kept compatible
// with records that predate the mode field.
type routineWire struct {
	ID           RoutineID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Mode         RecurrenceMode  `json:"mode,omitempty"`
	Days         []dates.Weekday `json:"days"`
	IntervalDays int             `json:"intervalDays,omitempty"`
	StartDate    dates.Day       `json:"startDate"`
	Time         string          `json:"time,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (r Routine) wire() routineWire {
	w := routineWire{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Days:        []dates.Weekday{},
		Time:        r.Time,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
	switch rec := r.Recurrence.(type) {
	case Weekly:
		w.Mode = ModeWeekly
		if rec.Days != nil {
			w.Days = rec.Days
		}
	case Interval:
		w.Mode = ModeInterval
		w.IntervalDays = rec.Every
		w.StartDate = rec.Start
	}
	return w
}

func (r Routine) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r *Routine) UnmarshalJSON(b []byte) error {
	var w routineWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Routine{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Recurrence:  ResolveRecurrence(w.Mode, w.Days, w.IntervalDays, w.StartDate, w.CreatedAt),
		Time:        w.Time,
		Active:      w.Active,
		CreatedAt:   w.CreatedAt,
	}
	return nil
}

// RoutineUpsert is the creation payload accepted at the HTTP boundary.
type RoutineUpsert struct {
	Title        string          `json:"title" validate:"required,min=1,max=500"`
	Description  string          `json:"description" validate:"max=4000"`
	Mode         RecurrenceMode  `json:"mode" validate:"omitempty,oneof=weekly interval"`
	Days         []dates.Weekday `json:"days" validate:"required_if=Mode weekly,max=7,dive,oneof=mon tue wed thu fri sat sun"`
	IntervalDays int             `json:"intervalDays" validate:"required_if=Mode interval,omitempty,min=1,max=3650"`
	StartDate    dates.Day       `json:"startDate"`
	Time         string          `json:"time" validate:"omitempty,len=5,datetime=15:04"`
}

// Normalize fills in the mode for payloads that carry only a recurrence
// shape. Validation needs an explicit mode for its cross-field rules, so
// a shape-free payload normalizes to weekly and fails the day check
// instead of slipping through as a routine that is never due.
func (in *RoutineUpsert) Normalize() {
	if in.Mode != "" {
		return
	}
	if in.IntervalDays > 0 {
		in.Mode = ModeInterval
	} else {
		in.Mode = ModeWeekly
	}
}

// Routine builds an unsaved Routine from the payload. New records always
// get an explicit mode; the legacy inference only applies to stored data.
func (in RoutineUpsert) Routine(now time.Time) Routine {
	mode := in.Mode
	if mode == "" {
		mode = ModeWeekly
	}
	hhmm := in.Time
	if hhmm == "" {
		hhmm = "08:00"
	}
	return Routine{
		Title:       in.Title,
		Description: in.Description,
		Recurrence:  ResolveRecurrence(mode, in.Days, in.IntervalDays, in.StartDate, now),
		Time:        hhmm,
		Active:      true,
	}
}
