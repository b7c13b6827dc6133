// inventoryd is the device inventory service daemon.
//
// It exposes the inventory over a REST API with a WebSocket event stream,
// persists devices to SQLite or a flat text file depending on configuration,
// and optionally publishes lifecycle events to MQTT and activity metrics to
// InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jooppDS/inventory-core/migrations"

	"github.com/jooppDS/inventory-core/internal/api"
	"github.com/jooppDS/inventory-core/internal/device"
	"github.com/jooppDS/inventory-core/internal/infrastructure/config"
	"github.com/jooppDS/inventory-core/internal/infrastructure/database"
	"github.com/jooppDS/inventory-core/internal/infrastructure/influxdb"
	"github.com/jooppDS/inventory-core/internal/infrastructure/logging"
	"github.com/jooppDS/inventory-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
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

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting inventory service",
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

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the configured storage backend
	repo, store, db, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Repo:    repo,
		Store:   store,
		MQTT:    mqttClient,
		Influx:  influxClient,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// In file mode, flush the store one last time so nothing added since the
	// previous explicit save is lost.
	if store != nil {
		if saveErr := store.Save(); saveErr != nil {
			log.Error("final store save failed", "error", saveErr)
		} else {
			log.Info("device store saved", "count", store.Len())
		}
	}

	log.Info("inventory service stopped")
	return nil
}

// openStorage opens the configured persistence backend and returns the
// repository the API serves from. In relational mode the returned *database.DB
// must be closed by the caller; in file mode it is nil and the returned store
// backs the repository.
func openStorage(ctx context.Context, cfg *config.Config, log *logging.Logger) (device.Repository, *device.Store, *database.DB, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		db, err := database.Open(database.Config{
			Path:        cfg.Storage.Database.Path,
			WALMode:     cfg.Storage.Database.WALMode,
			BusyTimeout: cfg.Storage.Database.BusyTimeout,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		log.Info("database connected", "path", cfg.Storage.Database.Path)

		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // Already failing; best-effort cleanup
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database migrations complete")

		return device.NewSQLiteRepository(db.DB), nil, db, nil

	case config.StorageDriverFile:
		codec := device.NewCodec()
		codec.SetLogger(log)

		store, err := device.LoadStore(codec, cfg.Storage.File.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading device file: %w", err)
		}
		store.SetLogger(log)
		log.Info("device file loaded", "path", cfg.Storage.File.Path, "devices", store.Len())

		return device.NewFileRepository(store, codec), store, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// getConfigPath returns the configuration file path.
// Uses INVENTORY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INVENTORY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy. Any of the
// clients may be nil when the corresponding backend is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
