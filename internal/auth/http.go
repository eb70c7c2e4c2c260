package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Handler serves the /api/auth endpoints. Everything here is reachable
// without a session; RequireAPI guards the rest of the API.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// credentials is the wire shape shared by request-otp and verify-otp.
type credentials struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// readCredentials enforces POST and decodes the body, writing the error
// response itself when either fails.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return credentials{}, false
	}
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return credentials{}, false
	}
	return in, true
}

func userPayload(u User) map[string]any {
	return map[string]any{"id": u.ID, "email": u.Email}
}

// POST /api/auth/request-otp
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	in, ok := readCredentials(w, r)
	if !ok {
		return
	}

	exp, code, err := h.service.RequestOTP(in.Email, time.Now())
	if errors.Is(err, ErrInvalidEmail) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not request otp")
		return
	}

	// No mailer is wired up; the code lands in the server log.
	h.service.logger.Printf("[auth] OTP code for %s is %s (expires %s)", in.Email, code, exp.Format(time.RFC3339))

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"expiresAt": exp.Format(time.RFC3339),
	})
}

// POST /api/auth/verify-otp
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	in, ok := readCredentials(w, r)
	if !ok {
		return
	}

	u, token, exp, err := h.service.VerifyOTP(in.Email, in.Code, time.Now())
	if err != nil {
		status, msg := verifyFailure(err)
		writeErr(w, status, msg)
		return
	}

	h.service.SetSessionCookie(w, r, token, exp)

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"user":      userPayload(u),
		"expiresAt": exp.Format(time.RFC3339),
	})
}

func verifyFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidOTPFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrInvalidOTP), errors.Is(err, ErrOTPExpired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrTooManyOTPAttempts):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, "could not verify otp"
}

// GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, sess, ok := h.service.AuthenticateRequest(r, time.Now())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": userPayload(u),
		"session": map[string]any{
			"id":        sess.ID,
			"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
			"lastSeen":  sess.LastSeen.Format(time.RFC3339),
		},
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.service.RevokeSessionForRequest(r)
	h.service.ClearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
