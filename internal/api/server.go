package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/fieldtask-core/internal/device"
	"github.com/nerrad567/fieldtask-core/internal/document"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/config"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/logging"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fieldtask-core/internal/task"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Metrics config.MetricsConfig
	Logger  *logging.Logger

	// Store backs the health endpoint. Devices and Tasks are built on it.
	Store   document.Store
	Devices device.Repository
	Tasks   *task.Service

	// Hub is shared with the EventPublisher handed to Tasks. If nil the
	// server creates its own and task events are not streamed.
	Hub *Hub

	// MQTT and Influx are optional. MQTT feeds the WebSocket relay; both
	// are reported by /health.
	MQTT   *mqtt.Client
	Influx *influxdb.Client

	// Telemetry is shared with the EventPublisher. If nil the server
	// creates its own.
	Telemetry *Metrics

	Version string
}

// Server is the HTTP API server for Fieldtask Core.
//
// It owns the HTTP listener, the outer mux with its middleware, the /api
// dispatcher and the WebSocket hub. Create with New and start with Start.
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	metricsCfg config.MetricsConfig
	logger     *logging.Logger
	store      document.Store
	devices    device.Repository
	tasks      *task.Service
	mqtt       *mqtt.Client
	influx     *influxdb.Client
	version    string
	startTime  time.Time

	hub     *Hub
	metrics *Metrics
	routes  RouteTable
	server  *http.Server
	cancel  context.CancelFunc
}

// New creates a server from deps. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if deps.Tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.WS, deps.Logger)
	}

	telemetry := deps.Telemetry
	if telemetry == nil {
		telemetry = NewMetrics()
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		metricsCfg: deps.Metrics,
		logger:     deps.Logger.With("component", "api"),
		store:      deps.Store,
		devices:    deps.Devices,
		tasks:      deps.Tasks,
		mqtt:       deps.MQTT,
		influx:     deps.Influx,
		version:    deps.Version,
		startTime:  time.Now(),
		hub:        hub,
		metrics:    telemetry,
		routes:     DefaultRouteTable(),
	}, nil
}

// Start runs the WebSocket hub and launches the HTTP listener in a
// background goroutine. Stop it with Close.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	if err := s.relayBusEvents(); err != nil {
		s.logger.Warn("failed to subscribe to task events for WebSocket relay", "error", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to ten seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}
