package agenda

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/internal/dates"
	"daybook/internal/materialize"
	"daybook/internal/model"
	"daybook/internal/routine"
	"daybook/internal/task"
)

func day(y int, m time.Month, d int) dates.Day { return dates.FromYMD(y, m, d) }

func TestBuild_SplitsVisibleTasksByCompletion(t *testing.T) {
	target := day(2024, time.March, 5)
	created := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.Local)
	due := day(2024, time.March, 5)

	tasks := []model.Task{
		{ID: "task_a", Title: "open", DueDate: &due, CreatedAt: created},
		{ID: "task_b", Title: "closed", Completed: true, DueDate: &due, CreatedAt: created},
		{ID: "task_c", Title: "elsewhere", CreatedAt: created}, // only visible on creation day
	}

	v := Build(tasks, nil, target)

	require.Len(t, v.Pending, 1)
	require.Len(t, v.Done, 1)
	assert.Equal(t, "open", v.Pending[0].Title)
	assert.Equal(t, "closed", v.Done[0].Title)
	assert.Equal(t, 2, v.Progress.Total)
	assert.Equal(t, 1, v.Progress.Completed)
	assert.InDelta(t, 50.0, v.Progress.Percent, 0.001)
}

func TestBuild_IncludesDueRoutines(t *testing.T) {
	wednesday := day(2024, time.January, 10)
	routines := []model.Routine{
		{ID: "rtn_a", Title: "gym", Recurrence: model.Weekly{Days: []dates.Weekday{dates.Wed}}, Active: true},
		{ID: "rtn_b", Title: "off day", Recurrence: model.Weekly{Days: []dates.Weekday{dates.Sun}}, Active: true},
	}

	v := Build(nil, routines, wednesday)

	require.Len(t, v.Routines, 1)
	assert.Equal(t, "gym", v.Routines[0].Title)
}

func TestBuild_EmptyDayHasZeroProgress(t *testing.T) {
	v := Build(nil, nil, day(2024, time.January, 1))

	assert.Zero(t, v.Progress.Total)
	assert.Zero(t, v.Progress.Percent)
	assert.NotNil(t, v.Pending)
	assert.NotNil(t, v.Done)
}

func newTestHandler() (*Handler, task.Repo, routine.Repo, model.Scope) {
	tasks := task.NewMemoryRepo()
	routines := routine.NewMemoryRepo()
	m := materialize.New(tasks, routines)
	scope := model.PersonalScope("user_1")
	h := NewHandler(tasks, routines, m, func(r *http.Request) (model.Scope, error) {
		return scope, nil
	})
	return h, tasks, routines, scope
}

func TestToday_MaterializesDueRoutines(t *testing.T) {
	h, tasks, routines, scope := newTestHandler()
	_, err := routines.Create(scope, model.Routine{
		Title:      "morning pages",
		Recurrence: model.Weekly{Days: []dates.Weekday{dates.Today().Key()}},
		Active:     true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/today", nil)
	rec := httptest.NewRecorder()
	h.Today(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Len(t, v.Pending, 1)
	assert.Equal(t, "morning pages", v.Pending[0].Title)
	assert.True(t, v.Pending[0].IsRoutineGenerated)

	// The task is durably stored, not just rendered.
	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestToday_SecondRequestDoesNotDuplicate(t *testing.T) {
	h, tasks, routines, scope := newTestHandler()
	_, err := routines.Create(scope, model.Routine{
		Title:      "stretch",
		Recurrence: model.Weekly{Days: []dates.Weekday{dates.Today().Key()}},
		Active:     true,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Today(rec, httptest.NewRequest(http.MethodGet, "/api/today", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestAgenda_RendersPastDayWithoutMaterializing(t *testing.T) {
	h, tasks, routines, scope := newTestHandler()
	_, err := routines.Create(scope, model.Routine{
		Title:      "gym",
		Recurrence: model.Weekly{Days: []dates.Weekday{dates.Wed}},
		Active:     true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/agenda?date=2024-01-10", nil)
	rec := httptest.NewRecorder()
	h.Agenda(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Len(t, v.Routines, 1)
	assert.Equal(t, "gym", v.Routines[0].Title)

	ts, err := tasks.List(scope, task.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestAgenda_RejectsBadDate(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/agenda?date=01/10/2024", nil)
	rec := httptest.NewRecorder()
	h.Agenda(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
