package routine

import (
	"database/sql"
	"encoding/json"
	"time"

	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/store"
)

// SQLiteRepo is the durable routine repository. Rows written before the
// mode column existed load through model.ResolveRecurrence's inference.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *store.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db.SQL()}
}

const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

const routineColumns = `id, title, description, mode, days, interval_days, start_date, time, active, created_at`

func scopeClause(scope model.Scope) (string, []any) {
	if scope.ProjectID == nil {
		return `user_id = ? AND project_id IS NULL`, []any{scope.UserID}
	}
	return `user_id = ? AND project_id = ?`, []any{scope.UserID, string(*scope.ProjectID)}
}

// columns flattens the recurrence variant into its persisted fields.
func recurrenceColumns(rec model.Recurrence) (mode string, daysJSON string, intervalDays int, startDate any) {
	days := []dates.Weekday{}
	switch v := rec.(type) {
	case model.Weekly:
		mode = string(model.ModeWeekly)
		if v.Days != nil {
			days = v.Days
		}
	case model.Interval:
		mode = string(model.ModeInterval)
		intervalDays = v.Every
		if !v.Start.IsZero() {
			startDate = v.Start.String()
		}
	}
	b, err := json.Marshal(days)
	if err != nil {
		b = []byte("[]")
	}
	return mode, string(b), intervalDays, startDate
}

func (r *SQLiteRepo) Create(scope model.Scope, rt model.Routine) (model.Routine, error) {
	rt.ID = model.NewRoutineID()
	rt.CreatedAt = time.Now()
	if iv, ok := rt.Recurrence.(model.Interval); ok && iv.Start.IsZero() {
		iv.Start = dates.Normalize(rt.CreatedAt)
		rt.Recurrence = iv
	}

	var projectID any
	if scope.ProjectID != nil {
		projectID = string(*scope.ProjectID)
	}
	mode, daysJSON, intervalDays, startDate := recurrenceColumns(rt.Recurrence)

	_, err := r.db.Exec(`INSERT INTO routines
		(id, user_id, project_id, title, description, mode, days, interval_days, start_date, time, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		string(rt.ID), scope.UserID, projectID, rt.Title, rt.Description,
		mode, daysJSON, intervalDays, startDate, rt.Time, boolInt(rt.Active),
		rt.CreatedAt.UTC().Format(tsLayout))
	if err != nil {
		return model.Routine{}, err
	}
	return rt, nil
}

func (r *SQLiteRepo) Get(scope model.Scope, id model.RoutineID) (model.Routine, error) {
	where, args := scopeClause(scope)
	row := r.db.QueryRow(`SELECT `+routineColumns+` FROM routines WHERE `+where+` AND id = ?;`,
		append(args, string(id))...)
	rt, err := scanRoutine(row)
	if err == sql.ErrNoRows {
		return model.Routine{}, ErrNotFound
	}
	return rt, err
}

func (r *SQLiteRepo) Update(scope model.Scope, id model.RoutineID, p Patch) (model.Routine, error) {
	rt, err := r.Get(scope, id)
	if err != nil {
		return model.Routine{}, err
	}

	applyPatch(&rt, p)
	mode, daysJSON, intervalDays, startDate := recurrenceColumns(rt.Recurrence)

	where, args := scopeClause(scope)
	args = append([]any{rt.Title, rt.Description, mode, daysJSON, intervalDays, startDate,
		rt.Time, boolInt(rt.Active)}, args...)
	_, err = r.db.Exec(`UPDATE routines SET title = ?, description = ?, mode = ?, days = ?, interval_days = ?, start_date = ?, time = ?, active = ?
		WHERE `+where+` AND id = ?;`, append(args, string(id))...)
	if err != nil {
		return model.Routine{}, err
	}
	return rt, nil
}

func (r *SQLiteRepo) Delete(scope model.Scope, id model.RoutineID) error {
	where, args := scopeClause(scope)
	res, err := r.db.Exec(`DELETE FROM routines WHERE `+where+` AND id = ?;`, append(args, string(id))...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) List(scope model.Scope) ([]model.Routine, error) {
	where, args := scopeClause(scope)
	rows, err := r.db.Query(`SELECT `+routineColumns+` FROM routines WHERE `+where+` ORDER BY created_at ASC, id;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Routine{}
	for rows.Next() {
		rt, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row rowScanner) (model.Routine, error) {
	var rt model.Routine
	var id, mode, daysJSON, hhmm, createdStr string
	var intervalDays, active int
	var startStr sql.NullString

	if err := row.Scan(&id, &rt.Title, &rt.Description, &mode, &daysJSON,
		&intervalDays, &startStr, &hhmm, &active, &createdStr); err != nil {
		return model.Routine{}, err
	}

	rt.ID = model.RoutineID(id)
	rt.Time = hhmm
	rt.Active = active == 1
	if parsed, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
		rt.CreatedAt = parsed.Local()
	}

	var days []dates.Weekday
	_ = json.Unmarshal([]byte(daysJSON), &days)
	var start dates.Day
	if startStr.Valid && startStr.String != "" {
		if d, err := dates.Parse(startStr.String); err == nil {
			start = d
		}
	}
	rt.Recurrence = model.ResolveRecurrence(model.RecurrenceMode(mode), days, intervalDays, start, rt.CreatedAt)
	return rt, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
