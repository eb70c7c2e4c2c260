package auth

import (
	"database/sql"
	"errors"
	"time"

	"daybook/internal/store"
)

const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepo struct {
	db *store.DB
}

func NewSQLiteRepo(db *store.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts.Local()
}

func (r *SQLiteRepo) GetOrCreateUser(email string, now time.Time) (User, bool, error) {
	var u User
	var createdStr string
	err := r.db.SQL().QueryRow(
		`SELECT id, email, created_at FROM users WHERE email = ?;`, email,
	).Scan(&u.ID, &u.Email, &createdStr)
	if err == nil {
		u.CreatedAt = parseTS(createdStr)
		return u, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, false, err
	}

	u = User{ID: newID("usr"), Email: email, CreatedAt: now}
	if _, err := r.db.SQL().Exec(
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?);`,
		u.ID, u.Email, formatTS(u.CreatedAt),
	); err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (r *SQLiteRepo) GetUserByID(id string) (User, bool, error) {
	var u User
	var createdStr string
	err := r.db.SQL().QueryRow(
		`SELECT id, email, created_at FROM users WHERE id = ?;`, id,
	).Scan(&u.ID, &u.Email, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	u.CreatedAt = parseTS(createdStr)
	return u, true, nil
}

func (r *SQLiteRepo) PutChallenge(ch OTPChallenge) error {
	_, err := r.db.SQL().Exec(
		`INSERT INTO otp_challenges (email, code_hash, expires_at, requested_at, attempts)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET
			code_hash = excluded.code_hash,
			expires_at = excluded.expires_at,
			requested_at = excluded.requested_at,
			attempts = excluded.attempts;`,
		ch.Email, ch.CodeHash, formatTS(ch.ExpiresAt), formatTS(ch.RequestedAt), ch.Attempts,
	)
	return err
}

func (r *SQLiteRepo) GetChallenge(email string) (OTPChallenge, bool, error) {
	var ch OTPChallenge
	var expStr, reqStr string
	err := r.db.SQL().QueryRow(
		`SELECT email, code_hash, expires_at, requested_at, attempts FROM otp_challenges WHERE email = ?;`,
		email,
	).Scan(&ch.Email, &ch.CodeHash, &expStr, &reqStr, &ch.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return OTPChallenge{}, false, nil
	}
	if err != nil {
		return OTPChallenge{}, false, err
	}
	ch.ExpiresAt = parseTS(expStr)
	ch.RequestedAt = parseTS(reqStr)
	return ch, true, nil
}

func (r *SQLiteRepo) DeleteChallenge(email string) error {
	_, err := r.db.SQL().Exec(`DELETE FROM otp_challenges WHERE email = ?;`, email)
	return err
}

func (r *SQLiteRepo) CreateSession(s Session) error {
	_, err := r.db.SQL().Exec(
		`INSERT INTO sessions (id, user_id, token_hash, created_at, last_seen, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?);`,
		s.ID, s.UserID, s.TokenHash, formatTS(s.CreatedAt), formatTS(s.LastSeen), formatTS(s.ExpiresAt),
	)
	return err
}

func (r *SQLiteRepo) GetSessionByTokenHash(tokenHash string) (Session, bool, error) {
	var s Session
	var createdStr, seenStr, expStr string
	err := r.db.SQL().QueryRow(
		`SELECT id, user_id, token_hash, created_at, last_seen, expires_at FROM sessions WHERE token_hash = ?;`,
		tokenHash,
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &createdStr, &seenStr, &expStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	s.CreatedAt = parseTS(createdStr)
	s.LastSeen = parseTS(seenStr)
	s.ExpiresAt = parseTS(expStr)
	return s, true, nil
}

func (r *SQLiteRepo) DeleteSessionByID(sessionID string) error {
	_, err := r.db.SQL().Exec(`DELETE FROM sessions WHERE id = ?;`, sessionID)
	return err
}

func (r *SQLiteRepo) DeleteSessionByTokenHash(tokenHash string) error {
	_, err := r.db.SQL().Exec(`DELETE FROM sessions WHERE token_hash = ?;`, tokenHash)
	return err
}

func (r *SQLiteRepo) TouchSession(sessionID string, lastSeen time.Time) error {
	_, err := r.db.SQL().Exec(`UPDATE sessions SET last_seen = ? WHERE id = ?;`, formatTS(lastSeen), sessionID)
	return err
}
