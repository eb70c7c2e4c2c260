package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/internal/config"
	"daybook/internal/serverapp"
	"daybook/internal/store"
)

type testApp struct {
	handler http.Handler
	logs    *bytes.Buffer
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	db, err := store.Open(filepath.Join(t.TempDir(), "daybook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	h, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: logger,
		DB:     db,
	})
	require.NoError(t, err)

	return &testApp{
		handler: h,
		logs:    &logs,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b), "application/json")
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	a.captureCookies(rec.Result())
	return rec
}

func (a *testApp) captureCookies(res *http.Response) {
	for _, c := range res.Cookies() {
		if c == nil {
			continue
		}
		if c.MaxAge < 0 || strings.TrimSpace(c.Value) == "" {
			delete(a.cookies, c.Name)
			continue
		}
		cp := *c
		a.cookies[c.Name] = &cp
	}
}

func otpCodeFromLogs(t *testing.T, logs *bytes.Buffer) string {
	t.Helper()
	re := regexp.MustCompile(`OTP code for .* is ([0-9]{6})`)
	matches := re.FindAllStringSubmatch(logs.String(), -1)
	require.NotEmpty(t, matches, "no OTP code found in logs: %s", logs.String())
	last := matches[len(matches)-1]
	require.Len(t, last, 2)
	return last[1]
}

func (a *testApp) login(t *testing.T, email string) {
	t.Helper()

	res := a.json(http.MethodPost, "/api/auth/request-otp", map[string]any{"email": email})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	code := otpCodeFromLogs(t, a.logs)
	res = a.json(http.MethodPost, "/api/auth/verify-otp", map[string]any{"email": email, "code": code})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func TestServer_ProtectedRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/tasks", "/api/routines", "/api/projects", "/api/today", "/ws"} {
		res := app.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, res.Code, path)
	}
}

func TestServer_TaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "lifecycle@example.com")

	createRes := app.json(http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Write report",
		"priority": "high",
		"dueDate":  "2026-09-04",
	})
	require.Equal(t, http.StatusCreated, createRes.Code, createRes.Body.String())
	created := decodeBodyMap(t, createRes)
	taskID, _ := created["id"].(string)
	require.NotEmpty(t, taskID)

	listRes := app.request(http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusOK, listRes.Code)
	assert.Contains(t, listRes.Body.String(), taskID)

	patchRes := app.json(http.MethodPatch, "/api/tasks/"+taskID, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, patchRes.Code, patchRes.Body.String())
	patched := decodeBodyMap(t, patchRes)
	assert.Equal(t, true, patched["completed"])

	deleteRes := app.request(http.MethodDelete, "/api/tasks/"+taskID, nil, "")
	require.Equal(t, http.StatusOK, deleteRes.Code)

	getRes := app.request(http.MethodGet, "/api/tasks/"+taskID, nil, "")
	assert.Equal(t, http.StatusNotFound, getRes.Code)
}

func TestServer_ProjectScopingIsolatesTasks(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "scoped@example.com")

	projRes := app.json(http.MethodPost, "/api/projects", map[string]any{"name": "Side Project"})
	require.Equal(t, http.StatusCreated, projRes.Code, projRes.Body.String())
	projID, _ := decodeBodyMap(t, projRes)["id"].(string)
	require.NotEmpty(t, projID)

	res := app.json(http.MethodPost, "/api/tasks?project="+projID, map[string]any{"title": "scoped task"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	personal := app.request(http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusOK, personal.Code)
	assert.NotContains(t, personal.Body.String(), "scoped task")

	scoped := app.request(http.MethodGet, "/api/tasks?project="+projID, nil, "")
	require.Equal(t, http.StatusOK, scoped.Code)
	assert.Contains(t, scoped.Body.String(), "scoped task")

	unknown := app.request(http.MethodGet, "/api/tasks?project=proj_missing", nil, "")
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
}

func TestServer_TodayMaterializesOnce(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "routines@example.com")

	res := app.json(http.MethodPost, "/api/routines", map[string]any{
		"title":        "daily review",
		"mode":         "interval",
		"intervalDays": 1,
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	for i := 0; i < 2; i++ {
		todayRes := app.request(http.MethodGet, "/api/today", nil, "")
		require.Equal(t, http.StatusOK, todayRes.Code, todayRes.Body.String())
	}

	tasksRes := app.request(http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusOK, tasksRes.Code)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(tasksRes.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "daily review", tasks[0]["title"])
	assert.Equal(t, true, tasks[0]["isRoutineGenerated"])
}

func TestServer_UsersCannotSeeEachOther(t *testing.T) {
	app := newTestApp(t)

	app.login(t, "alice@example.com")
	res := app.json(http.MethodPost, "/api/tasks", map[string]any{"title": "alice secret"})
	require.Equal(t, http.StatusCreated, res.Code)

	logoutRes := app.json(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, logoutRes.Code)

	app.login(t, "bob@example.com")
	listRes := app.request(http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusOK, listRes.Code)
	assert.NotContains(t, listRes.Body.String(), "alice secret")
}

func TestServer_HealthEndpointsExposeRequestID(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, res.Code, "%s body=%s", path, res.Body.String())
		assert.NotEmpty(t, strings.TrimSpace(res.Header().Get("X-Request-Id")), path)
	}
}

func TestServer_RoutesJSONListsAPI(t *testing.T) {
	app := newTestApp(t)

	res := app.request(http.MethodGet, "/_/admin/routes.json", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "/api/today")
	assert.Contains(t, res.Body.String(), "/api/routines")
}

func TestServer_MetricsEndpointServes(t *testing.T) {
	app := newTestApp(t)

	res := app.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "go_goroutines")
}
