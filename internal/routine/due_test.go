package routine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daybook/internal/dates"
	"daybook/internal/model"
)

func weeklyRoutine(days ...dates.Weekday) model.Routine {
	return model.Routine{
		Title:      "weekly",
		Recurrence: model.Weekly{Days: days},
		Active:     true,
	}
}

func intervalRoutine(every int, start dates.Day) model.Routine {
	return model.Routine{
		Title:      "interval",
		Recurrence: model.Interval{Every: every, Start: start},
		Active:     true,
	}
}

func TestIsDueOn_WeeklyMatchesDayKeyOnly(t *testing.T) {
	r := weeklyRoutine(dates.Wed)

	// 2024-01-10 was a Wednesday; walk a full week around it.
	for offset := -3; offset <= 3; offset++ {
		d := dates.FromYMD(2024, time.January, 10).AddDays(offset)
		want := d.Key() == dates.Wed
		assert.Equal(t, want, IsDueOn(r, d), "%s (%s)", d, d.Key())
	}
}

func TestIsDueOn_WeeklyMultipleDays(t *testing.T) {
	r := weeklyRoutine(dates.Mon, dates.Fri)

	assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.January, 8)))  // Monday
	assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.January, 12))) // Friday
	assert.False(t, IsDueOn(r, dates.FromYMD(2024, time.January, 10))) // Wednesday
}

func TestIsDueOn_WeeklyEmptyDaysNeverDue(t *testing.T) {
	r := weeklyRoutine()

	for offset := 0; offset < 7; offset++ {
		d := dates.FromYMD(2024, time.January, 8).AddDays(offset)
		assert.False(t, IsDueOn(r, d))
	}
}

func TestIsDueOn_IntervalEveryThirdDay(t *testing.T) {
	start := dates.FromYMD(2024, time.January, 1)
	r := intervalRoutine(3, start)

	due := []int{1, 4, 7}
	notDue := []int{2, 3, 5, 6}
	for _, d := range due {
		assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.January, d)), "2024-01-%02d", d)
	}
	for _, d := range notDue {
		assert.False(t, IsDueOn(r, dates.FromYMD(2024, time.January, d)), "2024-01-%02d", d)
	}
}

func TestIsDueOn_IntervalNeverDueBeforeStart(t *testing.T) {
	r := intervalRoutine(3, dates.FromYMD(2024, time.January, 1))

	assert.False(t, IsDueOn(r, dates.FromYMD(2023, time.December, 31)))
	assert.False(t, IsDueOn(r, dates.FromYMD(2023, time.December, 29)))
}

func TestIsDueOn_IntervalDefaultsToDaily(t *testing.T) {
	r := intervalRoutine(0, dates.FromYMD(2024, time.January, 1))

	assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.January, 1)))
	assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.January, 2)))
	assert.True(t, IsDueOn(r, dates.FromYMD(2024, time.February, 20)))
}

func TestIsDueOn_IntervalAcrossDSTWindow(t *testing.T) {
	// Whole-day counts from normalized dates must survive clock shifts;
	// a 2-day cadence through late March stays on even offsets.
	start := dates.FromYMD(2024, time.March, 25)
	r := intervalRoutine(2, start)

	for offset := 0; offset <= 14; offset++ {
		d := start.AddDays(offset)
		assert.Equal(t, offset%2 == 0, IsDueOn(r, d), "%s", d)
	}
}

func TestIsDueOn_InactiveNeverDue(t *testing.T) {
	weekly := weeklyRoutine(dates.Mon, dates.Tue, dates.Wed, dates.Thu, dates.Fri, dates.Sat, dates.Sun)
	weekly.Active = false
	interval := intervalRoutine(1, dates.FromYMD(2024, time.January, 1))
	interval.Active = false

	d := dates.FromYMD(2024, time.January, 10)
	assert.False(t, IsDueOn(weekly, d))
	assert.False(t, IsDueOn(interval, d))
}

func TestIsDueOn_NilRecurrenceDegradesToNotDue(t *testing.T) {
	r := model.Routine{Title: "broken", Active: true}

	assert.NotPanics(t, func() {
		assert.False(t, IsDueOn(r, dates.FromYMD(2024, time.January, 10)))
	})
}

func TestIsDueOn_LegacyRecordsEvaluate(t *testing.T) {
	created := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local)

	// Legacy weekly: no mode, non-empty days.
	legacyWeekly := model.Routine{
		Title:      "gym",
		Recurrence: model.ResolveRecurrence("", []dates.Weekday{dates.Wed}, 0, dates.Day{}, created),
		Active:     true,
	}
	assert.True(t, IsDueOn(legacyWeekly, dates.FromYMD(2024, time.January, 10))) // Wednesday
	assert.False(t, IsDueOn(legacyWeekly, dates.FromYMD(2024, time.January, 11)))

	// Legacy interval: no mode, empty days, interval set.
	legacyInterval := model.Routine{
		Title:      "laundry",
		Recurrence: model.ResolveRecurrence("", nil, 2, dates.FromYMD(2024, time.January, 1), created),
		Active:     true,
	}
	assert.True(t, IsDueOn(legacyInterval, dates.FromYMD(2024, time.January, 3)))
	assert.False(t, IsDueOn(legacyInterval, dates.FromYMD(2024, time.January, 4)))
}

func TestDueOn_FiltersRoutines(t *testing.T) {
	wednesday := dates.FromYMD(2024, time.January, 10)
	active := weeklyRoutine(dates.Wed)
	active.Title = "due"
	inactive := weeklyRoutine(dates.Wed)
	inactive.Active = false
	offDay := weeklyRoutine(dates.Mon)

	due := DueOn([]model.Routine{active, inactive, offDay}, wednesday)

	assert.Len(t, due, 1)
	assert.Equal(t, "due", due[0].Title)
}
