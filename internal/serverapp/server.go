// Package serverapp wires storage, auth, and the API handlers into one
// http.Handler.
package serverapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"daybook/internal/agenda"
	"daybook/internal/auth"
	"daybook/internal/config"
	"daybook/internal/httpmw"
	"daybook/internal/materialize"
	"daybook/internal/model"
	"daybook/internal/project"
	"daybook/internal/routine"
	"daybook/internal/server"
	"daybook/internal/store"
	"daybook/internal/stream"
	"daybook/internal/task"
	"daybook/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
	// DB overrides the database opened from Config; tests inject one
	// backed by a temp dir.
	DB *store.DB
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	db := opts.DB
	if db == nil {
		var err error
		db, err = store.Open(opts.Config.Data.DBPath)
		if err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}

	authService := auth.NewService(auth.NewSQLiteRepo(db), opts.Logger, auth.Options{
		CookieName:     opts.Config.Auth.CookieName,
		OTPTTL:         opts.Config.OTPTTL(),
		SessionTTL:     opts.Config.SessionTTL(),
		MaxOTPAttempts: opts.Config.Auth.MaxOTPAttempts,
	})
	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("/api/auth/request-otp", authHandler.RequestOTP)
	mux.HandleFunc("/api/auth/verify-otp", authHandler.VerifyOTP)
	mux.HandleFunc("/api/auth/session", authHandler.Session)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)
	rr.Add(http.MethodPost, "/api/auth/request-otp", "Request a login code")
	rr.Add(http.MethodPost, "/api/auth/verify-otp", "Exchange a login code for a session")
	rr.Add(http.MethodGet, "/api/auth/session", "Describe the current session")
	rr.Add(http.MethodPost, "/api/auth/logout", "Revoke the current session")

	taskRepo := task.NewSQLiteRepo(db)
	routineRepo := routine.NewSQLiteRepo(db)
	projectRepo := project.NewSQLiteRepo(db)
	hub := stream.NewHub()

	resolveUser := func(r *http.Request) (string, error) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			return "", errors.New("no authenticated user")
		}
		return u.ID, nil
	}
	resolveScope := func(r *http.Request) (model.Scope, error) {
		userID, err := resolveUser(r)
		if err != nil {
			return model.Scope{}, err
		}
		raw := strings.TrimSpace(r.URL.Query().Get("project"))
		if raw == "" {
			return model.PersonalScope(userID), nil
		}
		pid := model.ProjectID(raw)
		if _, err := projectRepo.Get(userID, pid); err != nil {
			return model.Scope{}, fmt.Errorf("unknown project %q", raw)
		}
		return model.ProjectScope(userID, pid), nil
	}
	notifyScope := func(scope model.Scope) {
		hub.Notify(scope.Key())
	}

	taskHandler := task.NewHandler(taskRepo, resolveScope)
	taskHandler.SetOnChange(notifyScope)
	mux.Handle("/api/tasks", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksRoot)))
	mux.Handle("/api/tasks/", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksSub)))
	rr.Add(http.MethodGet, "/api/tasks", "List tasks in scope")
	rr.Add(http.MethodPost, "/api/tasks", "Create a task")
	rr.Add(http.MethodPatch, "/api/tasks/{id}", "Update a task")
	rr.Add(http.MethodDelete, "/api/tasks/{id}", "Delete a task")

	routineHandler := routine.NewHandler(routineRepo, resolveScope)
	routineHandler.SetOnChange(notifyScope)
	mux.Handle("/api/routines", authService.RequireAPI(http.HandlerFunc(routineHandler.RoutinesRoot)))
	mux.Handle("/api/routines/", authService.RequireAPI(http.HandlerFunc(routineHandler.RoutinesSub)))
	rr.Add(http.MethodGet, "/api/routines", "List routines in scope")
	rr.Add(http.MethodPost, "/api/routines", "Create a routine")
	rr.Add(http.MethodPatch, "/api/routines/{id}", "Update a routine")
	rr.Add(http.MethodDelete, "/api/routines/{id}", "Delete a routine")

	projectHandler := project.NewHandler(projectRepo, resolveUser)
	projectHandler.SetOnChange(hub.NotifyUser)
	mux.Handle("/api/projects", authService.RequireAPI(http.HandlerFunc(projectHandler.ProjectsRoot)))
	mux.Handle("/api/projects/", authService.RequireAPI(http.HandlerFunc(projectHandler.ProjectsSub)))
	rr.Add(http.MethodGet, "/api/projects", "List the user's projects")
	rr.Add(http.MethodPost, "/api/projects", "Create a project")
	rr.Add(http.MethodPatch, "/api/projects/{id}", "Update a project")
	rr.Add(http.MethodDelete, "/api/projects/{id}", "Delete a project")

	materializer := materialize.New(taskRepo, routineRepo)
	agendaHandler := agenda.NewHandler(taskRepo, routineRepo, materializer, resolveScope)
	agendaHandler.SetOnChange(notifyScope)
	mux.Handle("/api/today", authService.RequireAPI(http.HandlerFunc(agendaHandler.Today)))
	mux.Handle("/api/agenda", authService.RequireAPI(http.HandlerFunc(agendaHandler.Agenda)))
	rr.Add(http.MethodGet, "/api/today", "Today's agenda, materializing due routines")
	rr.Add(http.MethodGet, "/api/agenda", "Agenda for an arbitrary day")

	wsHandler := stream.NewWSHandler(hub, taskRepo, routineRepo, projectRepo, resolveScope, opts.Logger)
	mux.Handle("/ws", authService.RequireAPI(wsHandler))
	rr.Add(http.MethodGet, "/ws", "Live snapshot stream")

	mux.Handle("/metrics", telemetry.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "daybook",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := db.SQL().Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "daybook",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	server.RegisterRoutesJSON(mux, rr)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
