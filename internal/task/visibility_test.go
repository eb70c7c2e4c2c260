package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daybook/internal/dates"
	"daybook/internal/model"
)

func day(y int, m time.Month, d int) dates.Day {
	return dates.FromYMD(y, m, d)
}

func dayPtr(y int, m time.Month, d int) *dates.Day {
	v := dates.FromYMD(y, m, d)
	return &v
}

func TestVisibleOn_CreationThroughDueInclusive(t *testing.T) {
	tk := model.Task{
		Title:     "file taxes",
		CreatedAt: time.Date(2024, time.March, 1, 14, 30, 0, 0, time.Local),
		DueDate:   dayPtr(2024, time.March, 5),
	}

	for d := 1; d <= 5; d++ {
		assert.True(t, VisibleOn(tk, day(2024, time.March, d)), "2024-03-%02d", d)
	}
	assert.False(t, VisibleOn(tk, day(2024, time.February, 29)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 6)))
}

func TestVisibleOn_NoDueDateOnlyCreationDay(t *testing.T) {
	tk := model.Task{
		Title:     "one-off",
		CreatedAt: time.Date(2024, time.March, 1, 23, 59, 0, 0, time.Local),
	}

	assert.True(t, VisibleOn(tk, day(2024, time.March, 1)))
	assert.False(t, VisibleOn(tk, day(2024, time.February, 29)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 2)))
}

func TestVisibleOn_UnknownCreationWithDueDate(t *testing.T) {
	// Optimistic local state: no server timestamp yet.
	tk := model.Task{
		Title:   "pending write",
		DueDate: dayPtr(2024, time.March, 5),
	}

	assert.True(t, VisibleOn(tk, day(2024, time.March, 5)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 4)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 6)))
}

func TestVisibleOn_UnknownCreationNoDueDate(t *testing.T) {
	tk := model.Task{Title: "pending write"}

	assert.False(t, VisibleOn(tk, day(2024, time.March, 5)))
}

func TestVisibleOn_DueSameDayAsCreation(t *testing.T) {
	tk := model.Task{
		Title:     "due today",
		CreatedAt: time.Date(2024, time.March, 5, 8, 0, 0, 0, time.Local),
		DueDate:   dayPtr(2024, time.March, 5),
	}

	assert.True(t, VisibleOn(tk, day(2024, time.March, 5)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 4)))
	assert.False(t, VisibleOn(tk, day(2024, time.March, 6)))
}

func TestVisibleOn_DoesNotMutateInput(t *testing.T) {
	due := dates.FromYMD(2024, time.March, 5)
	tk := model.Task{
		Title:     "immutability",
		CreatedAt: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.Local),
		DueDate:   &due,
	}
	before := tk

	_ = VisibleOn(tk, day(2024, time.March, 3))

	assert.Equal(t, before, tk)
	assert.Equal(t, "2024-03-05", due.String())
}
