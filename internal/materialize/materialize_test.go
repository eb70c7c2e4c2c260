package materialize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/routine"
	"daybook/internal/task"
)

func setup() (*Materializer, task.Repo, routine.Repo, model.Scope) {
	tasks := task.NewMemoryRepo()
	routines := routine.NewMemoryRepo()
	return New(tasks, routines), tasks, routines, model.PersonalScope("user_1")
}

func addWeekly(t *testing.T, repo routine.Repo, scope model.Scope, title string, days ...dates.Weekday) model.Routine {
	t.Helper()
	r, err := repo.Create(scope, model.Routine{
		Title:      title,
		Recurrence: model.Weekly{Days: days},
		Active:     true,
	})
	require.NoError(t, err)
	return r
}

func TestRun_CreatesTaskForDueRoutine(t *testing.T) {
	m, tasks, routines, scope := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)
	r := addWeekly(t, routines, scope, "gym", dates.Wed)

	res, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	got := res.Created[0]
	assert.Equal(t, "gym", got.Title)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(wednesday))
	assert.True(t, got.IsRoutineGenerated)
	require.NotNil(t, got.RoutineID)
	assert.Equal(t, r.ID, *got.RoutineID)

	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestRun_SecondInvocationCreatesNothing(t *testing.T) {
	m, tasks, routines, scope := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)
	addWeekly(t, routines, scope, "gym", dates.Wed)
	addWeekly(t, routines, scope, "journal", dates.Wed)

	first, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	assert.Len(t, first.Created, 2)

	second, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 2, second.Skipped)

	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ts, 2)
}

func TestRun_DurableGuardSurvivesRestart(t *testing.T) {
	_, tasks, routines, scope := setup()

	// Run against the real today so stored creation timestamps line up
	// with the day being materialized, as they do in production.
	today := dates.Today()
	addWeekly(t, routines, scope, "gym", today.Key())

	first := New(tasks, routines)
	res, err := first.Run(scope, today)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	// A fresh materializer has no seen-set; the scan over existing
	// generated tasks must still prevent a duplicate.
	fresh := New(tasks, routines)
	res, err = fresh.Run(scope, today)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 1, res.Skipped)
}

func TestRun_NotDueRoutineIgnored(t *testing.T) {
	m, _, routines, scope := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)
	addWeekly(t, routines, scope, "sunday only", dates.Sun)

	res, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Zero(t, res.Skipped)
}

func TestRun_InactiveRoutineIgnored(t *testing.T) {
	m, _, routines, scope := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)
	r := addWeekly(t, routines, scope, "paused", dates.Wed)
	active := false
	_, err := routines.Update(scope, r.ID, routine.Patch{Active: &active})
	require.NoError(t, err)

	res, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
}

func TestRun_NewDayGeneratesAgain(t *testing.T) {
	m, tasks, routines, scope := setup()
	addWeekly(t, routines, scope, "daily-ish", dates.Wed, dates.Thu)

	wednesday := dates.FromYMD(2024, time.January, 10)
	res, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	// Both guards key on the day, so the next day generates fresh.
	thursday := wednesday.AddDays(1)
	res, err = m.Run(scope, thursday)
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)

	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ts, 2)
}

func TestRun_ScopesAreIndependent(t *testing.T) {
	m, tasks, routines, _ := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)

	personal := model.PersonalScope("user_1")
	project := model.ProjectScope("user_1", "proj_abc")
	addWeekly(t, routines, personal, "home gym", dates.Wed)
	addWeekly(t, routines, project, "standup notes", dates.Wed)

	res, err := m.Run(personal, wednesday)
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)

	res, err = m.Run(project, wednesday)
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)

	ts, err := tasks.List(personal, task.ListFilter{})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "home gym", ts[0].Title)
}

func TestRun_ManualTaskDoesNotBlockGeneration(t *testing.T) {
	m, tasks, routines, scope := setup()
	wednesday := dates.FromYMD(2024, time.January, 10)
	addWeekly(t, routines, scope, "gym", dates.Wed)

	// A hand-written task with the same title has no routine link and
	// must not count as generated.
	_, err := tasks.Create(scope, model.Task{Title: "gym"})
	require.NoError(t, err)

	res, err := m.Run(scope, wednesday)
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)
}
