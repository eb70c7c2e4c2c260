package auth

import (
	"sync"
	"time"
)

// MemoryRepo keeps auth state in process. Used in tests and as the
// backend when no database is configured.
type MemoryRepo struct {
	mu                   sync.RWMutex
	usersByID            map[string]User
	userIDByEmail        map[string]string
	challengesByEmail    map[string]OTPChallenge
	sessionsByID         map[string]Session
	sessionIDByTokenHash map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		usersByID:            map[string]User{},
		userIDByEmail:        map[string]string{},
		challengesByEmail:    map[string]OTPChallenge{},
		sessionsByID:         map[string]Session{},
		sessionIDByTokenHash: map[string]string{},
	}
}

func (r *MemoryRepo) GetOrCreateUser(email string, now time.Time) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.userIDByEmail[email]; ok {
		if u, ok := r.usersByID[id]; ok {
			return u, false, nil
		}
	}

	u := User{
		ID:        newID("usr"),
		Email:     email,
		CreatedAt: now,
	}
	r.usersByID[u.ID] = u
	r.userIDByEmail[email] = u.ID
	return u, true, nil
}

func (r *MemoryRepo) GetUserByID(id string) (User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.usersByID[id]
	return u, ok, nil
}

func (r *MemoryRepo) PutChallenge(ch OTPChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challengesByEmail[ch.Email] = ch
	return nil
}

func (r *MemoryRepo) GetChallenge(email string) (OTPChallenge, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.challengesByEmail[email]
	return ch, ok, nil
}

func (r *MemoryRepo) DeleteChallenge(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.challengesByEmail, email)
	return nil
}

func (r *MemoryRepo) CreateSession(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionsByID[s.ID] = s
	r.sessionIDByTokenHash[s.TokenHash] = s.ID
	return nil
}

func (r *MemoryRepo) GetSessionByTokenHash(tokenHash string) (Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sessionIDByTokenHash[tokenHash]
	if !ok {
		return Session{}, false, nil
	}
	s, ok := r.sessionsByID[id]
	return s, ok, nil
}

func (r *MemoryRepo) DeleteSessionByID(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessionsByID[sessionID]
	if !ok {
		return nil
	}
	delete(r.sessionsByID, sessionID)
	delete(r.sessionIDByTokenHash, s.TokenHash)
	return nil
}

func (r *MemoryRepo) DeleteSessionByTokenHash(tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.sessionIDByTokenHash[tokenHash]
	if !ok {
		return nil
	}
	delete(r.sessionIDByTokenHash, tokenHash)
	delete(r.sessionsByID, id)
	return nil
}

func (r *MemoryRepo) TouchSession(sessionID string, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessionsByID[sessionID]
	if !ok {
		return nil
	}
	s.LastSeen = lastSeen
	r.sessionsByID[sessionID] = s
	return nil
}
