// Fieldtask Core - field maintenance task API
//
// This is the main entry point for the Fieldtask Core service. It serves
// devices and maintenance tasks over a JSON HTTP API backed by a document
// store (SQLite, PostgreSQL, MongoDB or in-memory), and streams task
// lifecycle events over MQTT, WebSocket and InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/fieldtask-core/migrations"

	"github.com/nerrad567/fieldtask-core/internal/api"
	"github.com/nerrad567/fieldtask-core/internal/device"
	"github.com/nerrad567/fieldtask-core/internal/document"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/config"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/database"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/logging"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/mongodb"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fieldtask-core/internal/task"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until ctx is cancelled, and tears
// everything down in reverse order.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Fieldtask Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing document store")
		if closeErr := closeStore(); closeErr != nil {
			log.Error("error closing document store", "error", closeErr)
		}
	}()

	devices := device.NewStoreRepository(store)
	if err := seedDevices(ctx, cfg.Store.SeedFile, devices, log); err != nil {
		return err
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.With("component", "mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	hub := api.NewHub(cfg.WebSocket, log)
	telemetry := api.NewMetrics()
	publisher := api.NewEventPublisher(api.EventPublisherDeps{
		MQTT:    mqttClient,
		Hub:     hub,
		Influx:  influxClient,
		Metrics: telemetry,
		Logger:  log,
	})
	tasks := task.NewService(task.NewStoreRepository(store), publisher)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Metrics:   cfg.Metrics,
		Logger:    log,
		Store:     store,
		Devices:   devices,
		Tasks:     tasks,
		Hub:       hub,
		MQTT:      mqttClient,
		Influx:    influxClient,
		Telemetry: telemetry,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: store: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Fieldtask Core stopped")
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("FIELDTASK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openStore connects the configured document store backend and returns it
// with a function that releases its resources.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (document.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Info("using in-memory document store")
		return document.NewMemoryStore(), func() error { return nil }, nil

	case config.BackendMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		log.Info("MongoDB connected", "database", cfg.MongoDB.Database)
		return document.NewMongoStore(client.Database(), client.HealthCheck), client.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.Open(database.Config{
			Driver:      cfg.SQLDriver(),
			Path:        cfg.Database.Path,
			DSN:         cfg.Database.DSN,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		log.Info("database connected", "dialect", db.Dialect(), "path", db.Path())

		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // best effort cleanup on error path
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database migrations complete")
		return document.NewSQLStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// seedDevices loads the seed file, if any, into an empty device collection.
func seedDevices(ctx context.Context, path string, repo device.Repository, log *logging.Logger) error {
	if path == "" {
		return nil
	}
	seed, err := device.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("loading device seed: %w", err)
	}
	n, err := device.Seed(ctx, repo, seed)
	if err != nil {
		return fmt.Errorf("seeding devices: %w", err)
	}
	if n > 0 {
		log.Info("devices seeded", "count", n, "path", path)
	} else {
		log.Info("device collection not empty, seed skipped", "path", path)
	}
	return nil
}
