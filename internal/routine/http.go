package routine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"daybook/internal/dates"
	"daybook/internal/model"
)

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

// routinePatch is the wire shape of a partial update; recurrence fields
// arrive flattened the same way routines are stored.
type routinePatch struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Mode         *model.RecurrenceMode `json:"mode"`
	Days         *[]dates.Weekday      `json:"days"`
	IntervalDays *int                  `json:"intervalDays"`
	StartDate    *dates.Day            `json:"startDate"`
	Time         *string               `json:"time"`
	Active       *bool                 `json:"active"`
}

func (in routinePatch) patch(cur model.Routine) (Patch, error) {
	p := Patch{
		Title:       in.Title,
		Description: in.Description,
		Time:        in.Time,
		Active:      in.Active,
	}
	if in.Mode == nil && in.Days == nil && in.IntervalDays == nil && in.StartDate == nil {
		return p, nil
	}

	// Any recurrence field present: rebuild the variant from the current
	// shape plus the changed fields.
	mode := cur.Recurrence.Mode()
	days := []dates.Weekday{}
	every := 0
	start := dates.Day{}
	switch v := cur.Recurrence.(type) {
	case model.Weekly:
		days = v.Days
	case model.Interval:
		every = v.Every
		start = v.Start
	}
	if in.Mode != nil {
		mode = *in.Mode
	}
	if in.Days != nil {
		days = *in.Days
	}
	if in.IntervalDays != nil {
		every = *in.IntervalDays
	}
	if in.StartDate != nil {
		start = *in.StartDate
	}

	switch mode {
	case model.ModeWeekly:
		for _, d := range days {
			if !dates.ValidWeekday(d) {
				return Patch{}, errors.New("invalid weekday key: " + string(d))
			}
		}
		p.Recurrence = model.Weekly{Days: days}
	case model.ModeInterval:
		if every < 1 {
			return Patch{}, errors.New("intervalDays must be at least 1")
		}
		if start.IsZero() {
			start = dates.Normalize(cur.CreatedAt)
		}
		p.Recurrence = model.Interval{Every: every, Start: start}
	default:
		return Patch{}, errors.New("unknown recurrence mode")
	}
	return p, nil
}

// /api/routines  (collection)
func (h *Handler) RoutinesRoot(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		rs, err := h.repo.List(scope)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rs)

	case http.MethodPost:
		var in model.RoutineUpsert
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.Title = strings.TrimSpace(in.Title)
		in.Normalize()
		if err := h.validate.Struct(in); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := h.repo.Create(scope, in.Routine(time.Now()))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(scope)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/routines/{id}
func (h *Handler) RoutinesSub(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/routines/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt, err := h.repo.Get(scope, model.RoutineID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rt)

	case http.MethodPatch:
		var in routinePatch
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title cannot be empty")
			return
		}

		cur, err := h.repo.Get(scope, model.RoutineID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}

		p, err := in.patch(cur)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		rt, err := h.repo.Update(scope, model.RoutineID(id), p)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.notify(scope)
		writeJSON(w, http.StatusOK, rt)

	case http.MethodDelete:
		err := h.repo.Delete(scope, model.RoutineID(id))
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
