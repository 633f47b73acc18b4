// devparamd manages per-group device parameters for a single device.
//
// It hosts the parameter registry, the validation pipeline in front of
// it, and the HTTP control API fleet tooling talks to. Parameter changes
// are audited in SQLite and, when configured, published over MQTT and
// recorded in InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/devparam-core/migrations"

	"github.com/nerrad567/devparam-core/internal/api"
	"github.com/nerrad567/devparam-core/internal/audit"
	"github.com/nerrad567/devparam-core/internal/auth"
	"github.com/nerrad567/devparam-core/internal/command"
	"github.com/nerrad567/devparam-core/internal/events"
	"github.com/nerrad567/devparam-core/internal/gpu"
	"github.com/nerrad567/devparam-core/internal/group"
	"github.com/nerrad567/devparam-core/internal/infrastructure/config"
	"github.com/nerrad567/devparam-core/internal/infrastructure/database"
	"github.com/nerrad567/devparam-core/internal/infrastructure/logging"
	"github.com/nerrad567/devparam-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/devparam-core/internal/infrastructure/tsdb"
	"github.com/nerrad567/devparam-core/internal/param"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting devparamd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Open the audit store
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	auditRepo := audit.NewSQLiteRepository(db.DB)

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

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		// Fleet tooling can ask every daemon to re-announce its retained
		// online status.
		topics := mqtt.Topics{}
		if subErr := mqttClient.Subscribe(topics.StatusRequest(), byte(cfg.MQTT.QoS),
			func(string, []byte) error { return mqttClient.PublishStatus() },
		); subErr != nil {
			log.Warn("status request subscription failed", "error", subErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var tsdbClient *tsdb.Client
	if cfg.TSDB.Enabled {
		tsdbClient, err = tsdb.Connect(cfg.TSDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.TSDB.URL,
			"org", cfg.TSDB.Org,
			"bucket", cfg.TSDB.Bucket,
		)

		tsdbClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Group service and driver
	groups := group.NewService()
	groups.SetLogger(log)

	caps := gpu.CapsFromConfig(cfg.Device)
	driver := gpu.NewDriver(caps)

	// Parameter registry (only with group integration enabled; without it
	// the validator rejects parameter requests as unsupported and the
	// runtime accessor serves defaults)
	var registry *param.Registry
	if cfg.Groups.Enabled {
		registry = param.NewRegistry(cfg.Device.ID, driver, groups)
		registry.SetLogger(log)
		defer func() {
			log.Info("shutting down parameter registry")
			registry.Shutdown()
		}()
		log.Info("parameter registry initialised", "device", cfg.Device.ID)
	} else {
		log.Info("group parameter integration disabled")
	}

	accessor := gpu.NewAccessor(registry, caps)

	// Authorization policy
	policy, err := auth.FromConfig(cfg.Security.AuthPolicy)
	if err != nil {
		return fmt.Errorf("selecting auth policy: %w", err)
	}
	log.Info("authorization policy selected", "policy", policy.Name())

	// Event recorder. Sinks are passed through interface-typed locals so
	// an absent client stays a nil interface instead of a typed nil.
	var publisher events.Publisher
	if mqttClient != nil {
		publisher = mqttClient
	}
	var series events.SeriesWriter
	if tsdbClient != nil {
		series = tsdbClient
	}
	recorder := events.New(cfg.Device.ID, policy.Name(), auditRepo, publisher, series, byte(cfg.MQTT.QoS))
	recorder.SetLogger(log)

	if registry != nil {
		registry.SetDestroyHook(func(g *group.Group, recordsFreed int) {
			recorder.GroupDestroyed(g.ID(), g.Name(), recordsFreed)
		})
	}

	// Validation pipeline
	validator := command.New(groups, policy, registry, driver)
	validator.SetLogger(log)

	// HTTP control API
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Device:    cfg.Device,
		Logger:    log,
		Groups:    groups,
		Validator: validator,
		Accessor:  accessor,
		Caps:      caps,
		Registry:  registry,
		Audit:     auditRepo,
		Recorder:  recorder,
		DB:        db,
		MQTT:      mqttClient,
		TSDB:      tsdbClient,
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
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, tsdbClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (stop accepting requests)
	// 2. Parameter registry (drain records)
	// 3. InfluxDB / MQTT (if enabled)
	// 4. Database

	log.Info("devparamd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DEVPARAM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DEVPARAM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, tsdbClient *tsdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if tsdbClient != nil {
		if err := tsdbClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
