package task

import (
	"database/sql"
	"encoding/json"
	"time"

	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/store"
)

// SQLiteRepo is the durable task repository.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *store.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db.SQL()}
}

const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, title, description, completed, priority, due_date, tags, routine_generated, routine_id, created_at, updated_at`

func scopeClause(scope model.Scope) (string, []any) {
	if scope.ProjectID == nil {
		return `user_id = ? AND project_id IS NULL`, []any{scope.UserID}
	}
	return `user_id = ? AND project_id = ?`, []any{scope.UserID, string(*scope.ProjectID)}
}

func (r *SQLiteRepo) Create(scope model.Scope, t model.Task) (model.Task, error) {
	now := time.Now()
	t.ID = model.NewTaskID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return model.Task{}, err
	}

	var projectID any
	if scope.ProjectID != nil {
		projectID = string(*scope.ProjectID)
	}
	var due any
	if t.DueDate != nil && !t.DueDate.IsZero() {
		due = t.DueDate.String()
	}
	var routineID any
	if t.RoutineID != nil {
		routineID = string(*t.RoutineID)
	}

	_, err = r.db.Exec(`INSERT INTO tasks
		(id, user_id, project_id, title, description, completed, priority, due_date, tags, routine_generated, routine_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		string(t.ID), scope.UserID, projectID, t.Title, t.Description, boolInt(t.Completed),
		string(t.Priority), due, string(tags), boolInt(t.IsRoutineGenerated), routineID,
		t.CreatedAt.UTC().Format(tsLayout), t.UpdatedAt.UTC().Format(tsLayout))
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepo) Get(scope model.Scope, id model.TaskID) (model.Task, error) {
	where, args := scopeClause(scope)
	row := r.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE `+where+` AND id = ?;`,
		append(args, string(id))...)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

func (r *SQLiteRepo) Update(scope model.Scope, id model.TaskID, p Patch) (model.Task, error) {
	t, err := r.Get(scope, id)
	if err != nil {
		return model.Task{}, err
	}

	applyPatch(&t, p)
	t.UpdatedAt = time.Now()
	normalizeTask(&t)

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return model.Task{}, err
	}
	var due any
	if t.DueDate != nil && !t.DueDate.IsZero() {
		due = t.DueDate.String()
	}

	where, args := scopeClause(scope)
	args = append([]any{t.Title, t.Description, boolInt(t.Completed), string(t.Priority), due,
		string(tags), t.UpdatedAt.UTC().Format(tsLayout)}, args...)
	_, err = r.db.Exec(`UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?, tags = ?, updated_at = ?
		WHERE `+where+` AND id = ?;`, append(args, string(id))...)
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepo) Delete(scope model.Scope, id model.TaskID) error {
	where, args := scopeClause(scope)
	res, err := r.db.Exec(`DELETE FROM tasks WHERE `+where+` AND id = ?;`, append(args, string(id))...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) List(scope model.Scope, filter ListFilter) ([]model.Task, error) {
	where, args := scopeClause(scope)
	rows, err := r.db.Query(`SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY created_at DESC, id;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	today := dates.Today()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	var id, priority, tagsJSON, createdStr, updatedStr string
	var completed, generated int
	var dueStr, routineID sql.NullString

	if err := row.Scan(&id, &t.Title, &t.Description, &completed, &priority, &dueStr,
		&tagsJSON, &generated, &routineID, &createdStr, &updatedStr); err != nil {
		return model.Task{}, err
	}

	t.ID = model.TaskID(id)
	t.Completed = completed == 1
	t.Priority = model.NormalizePriority(model.Priority(priority))
	t.IsRoutineGenerated = generated == 1
	if routineID.Valid {
		rid := model.RoutineID(routineID.String)
		t.RoutineID = &rid
	}
	if dueStr.Valid && dueStr.String != "" {
		if d, err := dates.Parse(dueStr.String); err == nil {
			t.DueDate = &d
		}
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil || t.Tags == nil {
		t.Tags = []string{}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
		t.CreatedAt = parsed.Local()
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedStr); err == nil {
		t.UpdatedAt = parsed.Local()
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
