// Package dates provides calendar-day values for the scheduling core.
// All due-date and visibility decisions operate on whole days in the
// local timezone of the evaluating process; normalizing up front keeps
// interval math stable across daylight-saving transitions.
package dates

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const ymdLayout = "2006-01-02"

// Weekday is one of the seven routine day keys.
type Weekday string

const (
	Sun Weekday = "sun"
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
)

// dayKeys follows the Sunday=0..Saturday=6 convention of time.Weekday.
var dayKeys = [7]Weekday{Sun, Mon, Tue, Wed, Thu, Fri, Sat}

// ValidWeekday reports whether s is one of the seven day keys.
func ValidWeekday(s Weekday) bool {
	for _, k := range dayKeys {
		if k == s {
			return true
		}
	}
	return false
}

// Day is a calendar day: a time.Time with the time of day zeroed in the
// local timezone. The zero Day means "unknown".
type Day struct {
	t time.Time
}

// Normalize strips the time of day from t in local time.
func Normalize(t time.Time) Day {
	lt := t.Local()
	return Day{t: time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())}
}

// Today is the current calendar day.
func Today() Day {
	return Normalize(time.Now())
}

// FromYMD builds a Day from calendar components in local time.
func FromYMD(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (Day, error) {
	t, err := time.ParseInLocation(ymdLayout, s, time.Local)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

func (d Day) IsZero() bool      { return d.t.IsZero() }
func (d Day) Time() time.Time   { return d.t }
func (d Day) Equal(o Day) bool  { return d.t.Equal(o.t) }
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }
func (d Day) After(o Day) bool  { return d.t.After(o.t) }
func (d Day) AddDays(n int) Day { return Normalize(d.t.AddDate(0, 0, n)) }
func (d Day) String() string    { return d.t.Format(ymdLayout) }
func (d Day) Key() Weekday      { return dayKeys[int(d.t.Weekday())] }

// DaysSince is the whole-day count from o to d. Both values are already
// normalized, so a DST transition in between shifts the raw duration by
// at most an hour and rounding recovers the exact day count.
func (d Day) DaysSince(o Day) int {
	return int(math.Round(d.t.Sub(o.t).Hours() / 24))
}

// MarshalJSON encodes the day as "YYYY-MM-DD"; the zero day encodes as null.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
