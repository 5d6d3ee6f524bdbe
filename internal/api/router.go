package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency probe made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the outer HTTP mux. Everything under /api is handed
// to the resource dispatcher; chi only serves the operational endpoints.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed)
	})

	r.Get("/health", s.handleHealth)
	if s.metricsCfg.Enabled {
		r.Method(http.MethodGet, s.metricsPath(), s.metrics.Handler())
	}
	r.Get(s.wsPath(), s.handleWebSocket)

	dispatcher := NewRouter(s.routes, s.handlers(), s.logger)
	r.Handle("/api/*", dispatcher)

	return r
}

// handlers binds every route table entry to its handler.
func (s *Server) handlers() Handlers {
	return Handlers{
		{Resource: ResourceDevices, Shape: ShapeCollection, Method: http.MethodGet}: s.handleListDevices,
		{Resource: ResourceDevices, Shape: ShapeItem, Method: http.MethodGet}:       s.handleGetDevice,

		{Resource: ResourceTasks, Shape: ShapeCollection, Method: http.MethodGet}:  s.handleListTasks,
		{Resource: ResourceTasks, Shape: ShapeCollection, Method: http.MethodPost}: s.handleCreateTask,
		{Resource: ResourceTasks, Shape: ShapeItem, Method: http.MethodGet}:        s.handleGetTask,
		{Resource: ResourceTasks, Shape: ShapeItem, Method: http.MethodPut}:        s.handleUpdateTask,
		{Resource: ResourceTasks, Shape: ShapeItem, Method: http.MethodDelete}:     s.handleDeleteTask,
	}
}

func (s *Server) metricsPath() string {
	if s.metricsCfg.Path == "" {
		return "/metrics"
	}
	return s.metricsCfg.Path
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// componentHealth is one dependency's entry in the /health response.
type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthResponse is the /health body. Optional components are omitted
// when not configured.
type healthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]componentHealth `json:"components"`
	WebSocket     int                        `json:"websocket_clients"`
}

// handleHealth reports overall status: "ok" when the store answers,
// "degraded" when only an optional dependency fails, and 503 "unavailable"
// when the store is down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Components:    make(map[string]componentHealth),
		WebSocket:     s.hub.ClientCount(),
	}

	status := http.StatusOK
	if err := probe(r.Context(), s.store.HealthCheck); err != nil {
		resp.Components["store"] = componentHealth{Status: "down", Error: err.Error()}
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		resp.Components["store"] = componentHealth{Status: "up"}
	}

	optional := map[string]func(context.Context) error{}
	if s.mqtt != nil {
		optional["mqtt"] = s.mqtt.HealthCheck
	}
	if s.influx != nil {
		optional["influxdb"] = s.influx.HealthCheck
	}
	for name, check := range optional {
		if err := probe(r.Context(), check); err != nil {
			resp.Components[name] = componentHealth{Status: "down", Error: err.Error()}
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Components[name] = componentHealth{Status: "up"}
	}

	writeJSON(w, status, resp)
}

func probe(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return check(ctx)
}
