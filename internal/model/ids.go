package model

import (
	"strings"

	"github.com/google/uuid"
)

type (
	TaskID    string
	RoutineID string
	ProjectID string
)

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func NewTaskID() TaskID       { return TaskID(newID("task")) }
func NewRoutineID() RoutineID { return RoutineID(newID("rtn")) }
func NewProjectID() ProjectID { return ProjectID(newID("proj")) }
