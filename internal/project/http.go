package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"daybook/internal/model"
)

type Handler struct {
	repo         Repo
	userResolver func(*http.Request) (string, error)
	validate     *validator.Validate
	onChange     func(userID string)
}

func NewHandler(repo Repo, userResolver func(*http.Request) (string, error)) *Handler {
	return &Handler{
		repo:         repo,
		userResolver: userResolver,
		validate:     validator.New(),
	}
}

func (h *Handler) SetOnChange(fn func(userID string)) {
	h.onChange = fn
}

func (h *Handler) notify(userID string) {
	if h.onChange != nil {
		h.onChange(userID)
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

type projectPatch struct {
	Name        *string `json:"name"`
	Emoji       *string `json:"emoji"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

// /api/projects  (collection)
func (h *Handler) ProjectsRoot(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		ps, err := h.repo.List(userID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ps)

	case http.MethodPost:
		var in model.ProjectUpsert
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if err := h.validate.Struct(in); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := h.repo.Create(userID, in.Project())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(userID)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/projects/{id}
func (h *Handler) ProjectsSub(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.repo.Get(userID, model.ProjectID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPatch:
		var in projectPatch
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
			writeErr(w, http.StatusBadRequest, "name cannot be empty")
			return
		}

		p, err := h.repo.Update(userID, model.ProjectID(id), Patch{
			Name:        in.Name,
			Emoji:       in.Emoji,
			Color:       in.Color,
			Description: in.Description,
		})
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(userID)
		writeJSON(w, http.StatusOK, p)

	case http.MethodDelete:
		err := h.repo.Delete(userID, model.ProjectID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(userID)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
