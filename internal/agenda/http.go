package agenda

import (
	"encoding/json"
	"net/http"

	"daybook/internal/dates"
	"daybook/internal/materialize"
	"daybook/internal/model"
	"daybook/internal/routine"
	"daybook/internal/task"
)

type Handler struct {
	tasks         task.Repo
	routines      routine.Repo
	materializer  *materialize.Materializer
	scopeResolver func(*http.Request) (model.Scope, error)
	onChange      func(model.Scope)
}

func NewHandler(
	tasks task.Repo,
	routines routine.Repo,
	materializer *materialize.Materializer,
	scopeResolver func(*http.Request) (model.Scope, error),
) *Handler {
	return &Handler{
		tasks:         tasks,
		routines:      routines,
		materializer:  materializer,
		scopeResolver: scopeResolver,
	}
}

func (h *Handler) SetOnChange(fn func(model.Scope)) {
	h.onChange = fn
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// Today serves GET /api/today. Requesting the view is what triggers
// materialization: due routines become tasks before the view is built.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	today := dates.Today()
	res, err := h.materializer.Run(scope, today)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(res.Created) > 0 && h.onChange != nil {
		h.onChange(scope)
	}

	h.serveView(w, scope, today)
}

// Agenda serves GET /api/agenda?date=YYYY-MM-DD. Past and future days
// are rendered as-is; nothing is materialized for them.
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	scope, err := h.scopeResolver(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	day := dates.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = dates.Parse(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	h.serveView(w, scope, day)
}

func (h *Handler) serveView(w http.ResponseWriter, scope model.Scope, day dates.Day) {
	tasks, err := h.tasks.List(scope, task.ListFilter{})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	routines, err := h.routines.List(scope)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Build(tasks, routines, day))
}
