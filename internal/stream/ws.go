package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"daybook/internal/model"
	"daybook/internal/project"
	"daybook/internal/routine"
	"daybook/internal/task"
	"daybook/internal/telemetry"
)

const writeWait = 10 * time.Second

// Snapshot is the full state pushed on connect and after each change.
type Snapshot struct {
	Tasks    []model.Task    `json:"tasks"`
	Routines []model.Routine `json:"routines"`
	Projects []model.Project `json:"projects"`
}

// WSHandler upgrades /ws connections and streams snapshots for the
// caller's scope. Clients send nothing meaningful; the read side exists
// only to notice disconnects.
type WSHandler struct {
	hub           *Hub
	tasks         task.Repo
	routines      routine.Repo
	projects      project.Repo
	scopeResolver func(*http.Request) (model.Scope, error)
	logger        *log.Logger
	upgrader      websocket.Upgrader
}

func NewWSHandler(
	hub *Hub,
	tasks task.Repo,
	routines routine.Repo,
	projects project.Repo,
	scopeResolver func(*http.Request) (model.Scope, error),
	logger *log.Logger,
) *WSHandler {
	return &WSHandler{
		hub:           hub,
		tasks:         tasks,
		routines:      routines,
		projects:      projects,
		scopeResolver: scopeResolver,
		logger:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cookie auth; same-origin is enforced upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) snapshot(scope model.Scope) (Snapshot, error) {
	tasks, err := h.tasks.List(scope, task.ListFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	routines, err := h.routines.List(scope)
	if err != nil {
		return Snapshot{}, err
	}
	projects, err := h.projects.List(scope.UserID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Tasks: tasks, Routines: routines, Projects: projects}, nil
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeResolver(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(scope.Key())
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.push(conn, scope); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-sub.C():
			if err := h.push(conn, scope); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) push(conn *websocket.Conn, scope model.Scope) error {
	snap, err := h.snapshot(scope)
	if err != nil {
		h.logger.Printf("stream: snapshot %s: %v", scope.Key(), err)
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snap); err != nil {
		return err
	}
	telemetry.StreamBroadcasts.Inc()
	return nil
}
