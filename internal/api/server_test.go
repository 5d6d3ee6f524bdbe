package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/fieldtask-core/internal/device"
	"github.com/nerrad567/fieldtask-core/internal/document"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/config"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/logging"
	"github.com/nerrad567/fieldtask-core/internal/task"
)

const validTaskBody = `{
	"criticality": "high",
	"target": "65f1a2b3c4d5e6f708192a3b",
	"recordTime": "2026-03-01T09:30:00Z",
	"description": "Replace pump seal",
	"state": "open"
}`

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   document.Store
	devices *device.StoreRepository
}

// newTestEnv builds a Server over an in-memory store with events going
// straight to the hub.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, document.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, store document.Store) *testEnv {
	t.Helper()

	log := logging.Discard()
	wsCfg := config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}
	hub := NewHub(wsCfg, log)
	telemetry := NewMetrics()

	devices := device.NewStoreRepository(store)
	tasks := task.NewService(task.NewStoreRepository(store), NewEventPublisher(EventPublisherDeps{
		Hub:     hub,
		Metrics: telemetry,
		Logger:  log,
	}))

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS:        wsCfg,
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Logger:    log,
		Store:     store,
		Devices:   devices,
		Tasks:     tasks,
		Hub:       hub,
		Telemetry: telemetry,
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testEnv{srv: srv, handler: srv.buildRouter(), store: store, devices: devices}
}

// do sends a request with Accept: application/json and, when body is
// non-empty, Content-Type: application/json. Pass headers to override.
func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i+1] == "" {
			req.Header.Del(headers[i])
			continue
		}
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createTask(t *testing.T) task.Task {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/tasks", validTaskBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var created task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return created
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var body struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

// ─── Construction ──────────────────────────────────────────────────

func TestNew_RequiresDependencies(t *testing.T) {
	store := document.NewMemoryStore()
	full := Deps{
		Logger:  logging.Discard(),
		Store:   store,
		Devices: device.NewStoreRepository(store),
		Tasks:   task.NewService(task.NewStoreRepository(store), nil),
	}

	tests := []struct {
		name   string
		mutate func(*Deps)
	}{
		{"missing logger", func(d *Deps) { d.Logger = nil }},
		{"missing store", func(d *Deps) { d.Store = nil }},
		{"missing devices", func(d *Deps) { d.Devices = nil }},
		{"missing tasks", func(d *Deps) { d.Tasks = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.mutate(&deps)
			if _, err := New(deps); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}

	if _, err := New(full); err != nil {
		t.Errorf("New() with all deps error = %v", err)
	}
}

func TestServer_HealthCheckBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	if err := env.srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start = nil, want error")
	}
}

// ─── Operational endpoints ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("version = %q, want test", resp.Version)
	}
	if resp.Components["store"].Status != "up" {
		t.Errorf("store component = %+v, want up", resp.Components["store"])
	}
}

type unhealthyStore struct {
	document.Store
}

func (unhealthyStore) HealthCheck(context.Context) error {
	return errors.New("disk on fire")
}

func TestHealth_StoreDown(t *testing.T) {
	env := newTestEnvWithStore(t, unhealthyStore{Store: document.NewMemoryStore()})

	w := env.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "unavailable" {
		t.Errorf("status = %q, want unavailable", resp.Status)
	}
	if !strings.Contains(resp.Components["store"].Error, "disk on fire") {
		t.Errorf("store error = %q", resp.Components["store"].Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/tasks", "")
	env.createTask(t)

	w := env.do(t, http.MethodGet, "/metrics", "", "Accept", "text/plain")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, want := range []string{
		`fieldtask_http_requests_total{method="GET",route="/api/tasks",status="200"} 1`,
		`fieldtask_task_events_total{result="websocket",type="task.created"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

// ─── Middleware ────────────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/devices", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/devices", "", "X-Request-ID", "client-123")
	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodOptions, "/api/tasks", "", "Origin", "http://localhost:5173")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:5173")
	}

	env.srv.cfg.CORS.AllowedOrigins = []string{"https://ops.example.com"}
	w = env.do(t, http.MethodGet, "/api/tasks", "", "Origin", "http://evil.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("ACAO for disallowed origin = %q, want empty", got)
	}
}

type panickingStore struct {
	document.Store
}

func (panickingStore) FindAll(context.Context, string) ([]document.Document, error) {
	panic("boom")
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	env := newTestEnvWithStore(t, panickingStore{Store: document.NewMemoryStore()})
	w := env.do(t, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestBodySizeLimit(t *testing.T) {
	env := newTestEnv(t)
	big := `{"description":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	w := env.do(t, http.MethodPost, "/api/tasks", big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, w); got != "Request body too large" {
		t.Errorf("error = %v, want %q", got, "Request body too large")
	}
}

// ─── Dispatch ──────────────────────────────────────────────────────

func TestDispatch_UnknownPath(t *testing.T) {
	env := newTestEnv(t)
	paths := []string{
		"/api/unknown", "/api/tasks/short", "/api/tasks/UPPERCASE123",
		"/api/tasks/abc/def0123", "/api/tasks/", "/api", "/nope",
	}
	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodOptions,
	}
	for _, path := range paths {
		for _, method := range methods {
			t.Run(method+" "+path, func(t *testing.T) {
				w := env.do(t, method, path, "")
				if w.Code != http.StatusNotFound {
					t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
				}
				if w.Body.Len() != 0 {
					t.Errorf("body = %q, want empty", w.Body.String())
				}
			})
		}
	}
}

func TestDispatch_Preflight(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path        string
		wantMethods string
	}{
		{"/api/tasks", "GET,POST"},
		{"/api/tasks/65f1a2b3c4d5e6f708192a3b", "GET,PUT,DELETE"},
		{"/api/devices", "GET"},
		{"/api/devices/65f1a2b3c4d5e6f708192a3b", "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			// No Accept header: preflight precedes negotiation.
			w := env.do(t, http.MethodOptions, tt.path, "", "Accept", "")
			if w.Code != http.StatusNoContent {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
			}
			h := w.Header()
			if got := h.Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("Allow-Methods = %q, want %q", got, tt.wantMethods)
			}
			if got := h.Get("Access-Control-Allow-Headers"); got != "Content-Type,Accept" {
				t.Errorf("Allow-Headers = %q", got)
			}
			if got := h.Get("Access-Control-Max-Age"); got != "86400" {
				t.Errorf("Max-Age = %q", got)
			}
			if got := h.Get("Access-Control-Expose-Headers"); got != "Content-Type,Accept" {
				t.Errorf("Expose-Headers = %q", got)
			}
		})
	}
}

func TestDispatch_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method, path, wantAllow string
	}{
		{http.MethodDelete, "/api/tasks", "GET, POST, OPTIONS"},
		{http.MethodPost, "/api/tasks/65f1a2b3c4d5e6f708192a3b", "GET, PUT, DELETE, OPTIONS"},
		{http.MethodPost, "/api/devices", "GET, OPTIONS"},
		{http.MethodPut, "/api/devices/65f1a2b3c4d5e6f708192a3b", "GET, OPTIONS"},
		{http.MethodPatch, "/api/tasks/65f1a2b3c4d5e6f708192a3b", "GET, PUT, DELETE, OPTIONS"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, validTaskBody)
			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
			if got := w.Header().Get("Allow"); got != tt.wantAllow {
				t.Errorf("Allow = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestDispatch_NotAcceptable(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		accept string
		want   int
	}{
		{"missing", "", http.StatusNotAcceptable},
		{"html only", "text/html", http.StatusNotAcceptable},
		{"wrong case", "Application/JSON", http.StatusNotAcceptable},
		{"json", "application/json", http.StatusOK},
		{"json among others", "text/html, application/json;q=0.9", http.StatusOK},
		{"wildcard", "*/*", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/tasks", "", "Accept", tt.accept)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestDispatch_ContentType(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		want        int
	}{
		{"post missing", http.MethodPost, "/api/tasks", "", http.StatusBadRequest},
		{"post text", http.MethodPost, "/api/tasks", "text/plain", http.StatusBadRequest},
		{"post with charset", http.MethodPost, "/api/tasks", "application/json; charset=utf-8", http.StatusBadRequest},
		{"post upper case", http.MethodPost, "/api/tasks", "APPLICATION/JSON", http.StatusCreated},
		{"put text", http.MethodPut, "/api/tasks/" + created.ID, "text/plain", http.StatusBadRequest},
		{"put json", http.MethodPut, "/api/tasks/" + created.ID, "application/json", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, validTaskBody, "Content-Type", tt.contentType)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusBadRequest {
				if got := decodeError(t, w); got != "Invalid Content-Type. Expected application/json" {
					t.Errorf("error = %v", got)
				}
			}
		})
	}
}

func TestDispatch_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"truncated", `{"criticality": "high"`, "Invalid JSON body"},
		{"array", `["high"]`, "Invalid JSON body"},
		{"null", `null`, "Invalid JSON body"},
		{"whitespace", "   ", "Empty request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/tasks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if got := decodeError(t, w); got != tt.want {
				t.Errorf("error = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatch_MissingHandler(t *testing.T) {
	table := NewRouteTable(Route{
		Resource:          "widgets",
		Path:              "/api/widgets",
		CollectionMethods: []string{http.MethodGet},
	})
	router := NewRouter(table, Handlers{}, logging.Discard())

	req := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestDispatch_EveryDefaultRouteHasHandler(t *testing.T) {
	env := newTestEnv(t)
	handlers := env.srv.handlers()

	for _, rt := range DefaultRouteTable().Routes() {
		for _, m := range rt.CollectionMethods {
			if handlers[HandlerKey{Resource: rt.Resource, Shape: ShapeCollection, Method: m}] == nil {
				t.Errorf("no handler for %s %s", m, rt.Path)
			}
		}
		for _, m := range rt.ItemMethods {
			if handlers[HandlerKey{Resource: rt.Resource, Shape: ShapeItem, Method: m}] == nil {
				t.Errorf("no handler for %s %s/{id}", m, rt.Path)
			}
		}
	}
}

// ─── Devices ───────────────────────────────────────────────────────

func TestListDevices_Empty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/devices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestDevices_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	year := 2019.0
	pump := &device.Device{Name: "Pump 1", Year: &year, Type: "pump"}
	if err := env.devices.Create(ctx, pump); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.devices.Create(ctx, &device.Device{Name: "Valve 7"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/devices", "")
	var list []device.Device
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}

	w = env.do(t, http.MethodGet, "/api/devices/"+pump.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", w.Code, http.StatusOK)
	}
	var got device.Device
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != pump.ID || got.Name != "Pump 1" || got.Year == nil || *got.Year != 2019 {
		t.Errorf("device = %+v", got)
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/devices/65f1a2b3c4d5e6f708192a3b", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

// ─── Tasks ─────────────────────────────────────────────────────────

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)

	if len(created.ID) != 24 {
		t.Errorf("id = %q, want 24 hex characters", created.ID)
	}
	want := task.Task{
		ID:          created.ID,
		Criticality: "high",
		Target:      "65f1a2b3c4d5e6f708192a3b",
		RecordTime:  "2026-03-01T09:30:00Z",
		Description: "Replace pump seal",
		State:       "open",
	}
	if created != want {
		t.Errorf("created = %+v, want %+v", created, want)
	}
}

func TestCreateTask_ValidationMessages(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "missing description",
			body: `{"criticality":"high","target":"t1","recordTime":"2026-03-01","state":"open"}`,
			want: []string{"Missing description"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: []string{"Missing criticality", "Missing target", "Missing recordTime", "Missing description", "Missing state"},
		},
		{
			name: "blank strings and bad time",
			body: `{"criticality":"  ","target":"t1","recordTime":"yesterday","description":"d","state":""}`,
			want: []string{"Missing criticality", "Invalid recordTime", "Missing state"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/tasks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			var resp struct {
				Error []string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if strings.Join(resp.Error, "|") != strings.Join(tt.want, "|") {
				t.Errorf("error = %v, want %v", resp.Error, tt.want)
			}
		})
	}

	w := env.do(t, http.MethodGet, "/api/tasks", "")
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("tasks after failed creates = %s, want []", got)
	}
}

type failingWriteStore struct {
	document.Store
}

func (failingWriteStore) Insert(context.Context, string, document.Document) (document.Document, error) {
	return nil, errors.New("write refused")
}

func TestCreateTask_PersistenceFailure(t *testing.T) {
	env := newTestEnvWithStore(t, failingWriteStore{Store: document.NewMemoryStore()})

	w := env.do(t, http.MethodPost, "/api/tasks", validTaskBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	got, ok := decodeError(t, w).(string)
	if !ok || !strings.Contains(got, "write refused") {
		t.Errorf("error = %v, want message containing %q", got, "write refused")
	}
}

func TestTask_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)
	path := "/api/tasks/" + created.ID

	w := env.do(t, http.MethodGet, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var fetched task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched != created {
		t.Errorf("fetched = %+v, want %+v", fetched, created)
	}

	w = env.do(t, http.MethodGet, "/api/tasks", "")
	var list []task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0] != created {
		t.Errorf("list = %+v, want [%+v]", list, created)
	}
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)
	path := "/api/tasks/" + created.ID

	update := `{"criticality":"low","target":"65f1a2b3c4d5e6f708192a3b","recordTime":"2026-03-02",` +
		`"description":"Seal replaced","state":"done","id":"ffffffffffffffffffffffff"}`
	w := env.do(t, http.MethodPut, path, update)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var updated task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("id = %q, want %q", updated.ID, created.ID)
	}
	if updated.State != "done" || updated.RecordTime != "2026-03-02T00:00:00Z" {
		t.Errorf("updated = %+v", updated)
	}

	w = env.do(t, http.MethodGet, path, "")
	var fetched task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched != updated {
		t.Errorf("fetched = %+v, want %+v", fetched, updated)
	}
}

func TestUpdateTask_Errors(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)

	w := env.do(t, http.MethodPut, "/api/tasks/65f1a2b3c4d5e6f708192a3b", validTaskBody)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = env.do(t, http.MethodPut, "/api/tasks/65f1a2b3c4d5e6f708192a3b", `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id with invalid body status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = env.do(t, http.MethodPut, "/api/tasks/"+created.ID, `{"criticality":"low"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	msgs, ok := decodeError(t, w).([]any)
	if !ok || len(msgs) != 4 {
		t.Errorf("error = %v, want four messages", msgs)
	}
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t)
	path := "/api/tasks/" + created.ID

	w := env.do(t, http.MethodDelete, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusOK)
	}
	var prior task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &prior); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if prior != created {
		t.Errorf("deleted = %+v, want %+v", prior, created)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = env.do(t, method, path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s after delete status = %d, want %d", method, w.Code, http.StatusNotFound)
		}
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────

func TestWebSocket_StreamsTaskEvents(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.srv.hub.Run(ctx)

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()

	sub := WSMessage{Type: WSTypeSubscribe, ID: "1", Payload: WSSubscribePayload{Channels: []string{task.EventCreated}}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != WSTypeResponse || ack.ID != "1" {
		t.Fatalf("ack = %+v", ack)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/tasks", strings.NewReader(validTaskBody))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	createResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", createResp.StatusCode)
	}

	var ev WSMessage
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != WSTypeEvent || ev.EventType != task.EventCreated {
		t.Errorf("event = %+v, want %s", ev, task.EventCreated)
	}
}
