package routine

import (
	"database/sql"
	"encoding/json"
	"time"

	"daybook/internal/dates"
	"daybook/internal/model"
	"daybook/internal/store"
)

// MigrateLegacy rewrites routine rows that predate the mode column,
// resolving each into an explicit weekly or interval record. Untagged
// rows keep loading through the inference fallback, so running this is
// optional. Returns the number of rows rewritten.
func MigrateLegacy(db *store.DB) (int, error) {
	rows, err := db.SQL().Query(`SELECT id, days, interval_days, start_date, created_at FROM routines WHERE mode = '';`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type resolved struct {
		id           string
		mode         string
		intervalDays int
		startDate    any
	}
	pending := []resolved{}

	for rows.Next() {
		var id, daysJSON, createdStr string
		var intervalDays int
		var startStr sql.NullString
		if err := rows.Scan(&id, &daysJSON, &intervalDays, &startStr, &createdStr); err != nil {
			return 0, err
		}

		var days []dates.Weekday
		_ = json.Unmarshal([]byte(daysJSON), &days)
		var start dates.Day
		if startStr.Valid && startStr.String != "" {
			if d, err := dates.Parse(startStr.String); err == nil {
				start = d
			}
		}
		var createdAt time.Time
		if parsed, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
			createdAt = parsed.Local()
		}

		rec := model.ResolveRecurrence("", days, intervalDays, start, createdAt)
		out := resolved{id: id, mode: string(rec.Mode())}
		if iv, ok := rec.(model.Interval); ok {
			out.intervalDays = iv.Every
			if !iv.Start.IsZero() {
				out.startDate = iv.Start.String()
			}
		}
		pending = append(pending, out)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range pending {
		if p.mode == string(model.ModeInterval) {
			if _, err := db.SQL().Exec(`UPDATE routines SET mode = ?, interval_days = ?, start_date = ? WHERE id = ?;`,
				p.mode, p.intervalDays, p.startDate, p.id); err != nil {
				return 0, err
			}
			continue
		}
		if _, err := db.SQL().Exec(`UPDATE routines SET mode = ? WHERE id = ?;`, p.mode, p.id); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}
