package auth

import "time"

// Repo persists users, sessions, and pending OTP challenges.
type Repo interface {
	GetOrCreateUser(email string, now time.Time) (u User, created bool, err error)
	GetUserByID(id string) (User, bool, error)

	PutChallenge(ch OTPChallenge) error
	GetChallenge(email string) (OTPChallenge, bool, error)
	DeleteChallenge(email string) error

	CreateSession(s Session) error
	GetSessionByTokenHash(tokenHash string) (Session, bool, error)
	DeleteSessionByID(sessionID string) error
	DeleteSessionByTokenHash(tokenHash string) error
	TouchSession(sessionID string, lastSeen time.Time) error
}
