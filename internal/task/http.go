package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"daybook/internal/model"
)

// Handler serves /api/tasks. The scope resolver maps an authenticated
// request to the (user, optional project) partition.
type Handler struct {
	repo          Repo
	scopeResolver func(*http.Request) (model.Scope, error)
	validate      *validator.Validate
	onChange      func(model.Scope)
}

func NewHandler(repo Repo, scopeResolver func(*http.Request) (model.Scope, error)) *Handler {
	return &Handler{
		repo:          repo,
		scopeResolver: scopeResolver,
		validate:      validator.New(),
	}
}

// SetOnChange registers a callback fired after every successful mutation,
// used to push fresh snapshots to stream subscribers.
func (h *Handler) SetOnChange(fn func(model.Scope)) {
	h.onChange = fn
}

func (h *Handler) notify(scope model.Scope) {
	if h.onChange != nil {
		h.onChange(scope)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		ts, err := h.repo.List(scope, ListFilter{Status: r.URL.Query().Get("status")})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ts)

	case http.MethodPost:
		var in model.TaskUpsert
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		if err := h.validate.Struct(in); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		t, err := h.repo.Create(scope, in.Task())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(scope)
		writeJSON(w, http.StatusCreated, t)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/tasks/{id}
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.repo.Get(scope, model.TaskID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title cannot be empty")
			return
		}

		t, err := h.repo.Update(scope, model.TaskID(id), p)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(scope)
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		err := h.repo.Delete(scope, model.TaskID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(scope)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
