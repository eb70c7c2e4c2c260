// Package materialize turns due routines into concrete tasks, once per
// routine per day.
package materialize

import (
	"sync"

	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/routine"
	"daybook/internal/task"
	"daybook/internal/telemetry"
)

// Materializer creates one task per due routine per day. A fast in-memory
// seen-set short-circuits repeat runs within a process; the durable guard
// is a scan for tasks already generated from the routine today, so restarts
// never double-generate.
type Materializer struct {
	tasks    task.Repo
	routines routine.Repo

	mu   sync.Mutex
	seen map[string]map[model.RoutineID]dates.Day
}

func New(tasks task.Repo, routines routine.Repo) *Materializer {
	return &Materializer{
		tasks:    tasks,
		routines: routines,
		seen:     map[string]map[model.RoutineID]dates.Day{},
	}
}

// Result reports one run of the materializer.
type Result struct {
	Created []model.Task
	Skipped int
}

// Run materializes every routine in the scope that is due on the given
// day and has not produced a task for that day yet. It is idempotent:
// a second run on the same day creates nothing.
func (m *Materializer) Run(scope model.Scope, day dates.Day) (Result, error) {
	routines, err := m.routines.List(scope)
	if err != nil {
		return Result{}, err
	}
	due := routine.DueOn(routines, day)
	if len(due) == 0 {
		return Result{}, nil
	}

	existing, err := m.tasks.List(scope, task.ListFilter{})
	if err != nil {
		return Result{}, err
	}
	generated := map[model.RoutineID]bool{}
	for _, t := range existing {
		if t.RoutineID != nil && t.CreatedDay().Equal(day) {
			generated[*t.RoutineID] = true
		}
	}

	m.mu.Lock()
	bucket := m.seen[scope.Key()]
	if bucket == nil {
		bucket = map[model.RoutineID]dates.Day{}
		m.seen[scope.Key()] = bucket
	}
	m.mu.Unlock()

	res := Result{}
	for _, r := range due {
		m.mu.Lock()
		seenDay, hit := bucket[r.ID]
		m.mu.Unlock()
		if (hit && seenDay.Equal(day)) || generated[r.ID] {
			res.Skipped++
			telemetry.MaterializerSkips.Inc()
			continue
		}

		dueDate := day
		routineID := r.ID
		created, err := m.tasks.Create(scope, model.Task{
			Title:              r.Title,
			Description:        r.Description,
			Priority:           model.PriorityMedium,
			DueDate:            &dueDate,
			Tags:               []string{},
			IsRoutineGenerated: true,
			RoutineID:          &routineID,
		})
		if err != nil {
			return res, err
		}

		m.mu.Lock()
		bucket[r.ID] = day
		m.mu.Unlock()
		res.Created = append(res.Created, created)
		telemetry.MaterializedTasks.Inc()
	}
	return res, nil
}
