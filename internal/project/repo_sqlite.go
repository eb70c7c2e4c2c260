package project

import (
	"database/sql"
	"errors"
	"time"

	"daybook/internal/model"
	"daybook/internal/store"
)

const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepo struct {
	db *store.DB
}

func NewSQLiteRepo(db *store.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

const projectColumns = `id, name, emoji, color, description, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	var createdStr string
	if err := row.Scan(&p.ID, &p.Name, &p.Emoji, &p.Color, &p.Description, &createdStr); err != nil {
		return model.Project{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
		p.CreatedAt = ts.Local()
	}
	return p, nil
}

func (r *SQLiteRepo) Create(userID string, p model.Project) (model.Project, error) {
	p = normalizeProject(p, time.Now())
	_, err := r.db.SQL().Exec(
		`INSERT INTO projects (id, user_id, name, emoji, color, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?);`,
		p.ID, userID, p.Name, p.Emoji, p.Color, p.Description, p.CreatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *SQLiteRepo) Get(userID string, id model.ProjectID) (model.Project, error) {
	row := r.db.SQL().QueryRow(
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? AND id = ?;`,
		userID, id,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *SQLiteRepo) Update(userID string, id model.ProjectID, patch Patch) (model.Project, error) {
	cur, err := r.Get(userID, id)
	if err != nil {
		return model.Project{}, err
	}
	p := applyPatch(cur, patch)
	_, err = r.db.SQL().Exec(
		`UPDATE projects SET name = ?, emoji = ?, color = ?, description = ? WHERE user_id = ? AND id = ?;`,
		p.Name, p.Emoji, p.Color, p.Description, userID, id,
	)
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *SQLiteRepo) Delete(userID string, id model.ProjectID) error {
	res, err := r.db.SQL().Exec(`DELETE FROM projects WHERE user_id = ? AND id = ?;`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) List(userID string) ([]model.Project, error) {
	rows, err := r.db.SQL().Query(
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at ASC, id ASC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
