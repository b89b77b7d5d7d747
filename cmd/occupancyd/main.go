// Occupancy Core - resilient binary occupancy monitor
//
// occupancyd subscribes to a single occupancy sensor over MQTT,
// normalizes its reports into state transitions, and records them to
// SQLite (and optionally InfluxDB). Its defining property is surviving
// broker failures: restarts, network partitions, and half-open
// connections are all recovered automatically with backoff, without
// operator intervention.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/nerrad567/occupancy-core/migrations"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/config"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/database"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/logging"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/occupancy-core/internal/monitor"
	"github.com/nerrad567/occupancy-core/internal/occupancy"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting occupancy monitor",
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
	for _, warning := range cfg.Warnings() {
		log.Warn("configuration warning", "detail", warning)
	}

	// Build the sink chain: log always, SQLite and InfluxDB as configured
	sinks := []occupancy.Sink{occupancy.NewLogSink(log)}

	// Open database
	if cfg.Database.Enabled {
		db, openErr := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if openErr != nil {
			return fmt.Errorf("opening database: %w", openErr)
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

		sinks = append(sinks, occupancy.NewSQLiteRepository(db.DB))
	} else {
		log.Warn("database disabled, occupancy events will not be persisted")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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

		sinks = append(sinks, influxdb.NewSink(influxClient, cfg.Monitor.SubscribeTopic))
	} else {
		log.Info("InfluxDB disabled")
	}

	// The session is a dumb handle; the supervisor owns its lifecycle and
	// does all connecting, so a dead broker at startup is not an error.
	session := mqtt.NewSession(cfg.MQTT)
	backoff := monitor.NewBackoffPolicy(
		cfg.ReconnectMinDelay(),
		cfg.ReconnectMaxDelay(),
		cfg.Monitor.Reconnect.Jitter,
	)

	supervisor := monitor.NewSupervisor(monitor.Config{
		SubscribeTopic:        cfg.Monitor.SubscribeTopic,
		QoS:                   byte(cfg.MQTT.QoS),
		ConnectTimeout:        cfg.ConnectTimeout(),
		MaxInactive:           cfg.MaxInactive(),
		LivenessCheckInterval: cfg.LivenessCheckInterval(),
		QueueSize:             cfg.Monitor.QueueSize,
	}, session, backoff, occupancy.NewMultiSink(sinks...), log)

	heartbeat := monitor.NewHeartbeat(
		cfg.Monitor.HeartbeatTopic,
		cfg.HeartbeatInterval(),
		cfg.MQTT.Broker.ClientID,
		session,
		supervisor.State,
		log,
	)

	log.Info("monitor starting",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"topic", cfg.Monitor.SubscribeTopic,
		"heartbeat_topic", cfg.Monitor.HeartbeatTopic,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = heartbeat.Run(ctx)
	}()

	// The supervisor runs in the foreground until shutdown.
	err = supervisor.Run(ctx)
	wg.Wait()

	log.Info("occupancy monitor stopped")
	return err
}

// getConfigPath returns the configuration file path.
// Uses OCCUPANCY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("OCCUPANCY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
