package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestConfig writes a config pointing at an unreachable broker so
// tests never depend on a live MQTT daemon.
func writeTestConfig(t *testing.T, dbPath string) string {
	t.Helper()

	configContent := `
monitor:
  subscribe_topic: "zigbee2mqtt/SONOFF_SNZB-06P"
  heartbeat_topic: "occupancy_monitor/heartbeat"
  heartbeat_interval: 15
  max_inactive: 60
  liveness_check_interval: 5
  queue_size: 16
  reconnect:
    min_delay: 1
    max_delay: 2
    jitter: 0.2

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "occupancyd-test"
  session:
    persistent: true
    keep_alive: 30
  qos: 1
  connect_timeout: 1

database:
  enabled: true
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("OCCUPANCY_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when the database is
// enabled but has no path.
func TestRun_MissingDatabasePath(t *testing.T) {
	configPath := writeTestConfig(t, "")
	t.Setenv("OCCUPANCY_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_SurvivesUnreachableBroker verifies a dead broker at startup is
// not fatal: the supervisor retries until shutdown and run exits clean.
func TestRun_SurvivesUnreachableBroker(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "occupancy.db")
	configPath := writeTestConfig(t, dbPath)
	t.Setenv("OCCUPANCY_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want nil despite unreachable broker", err)
	}

	// The database side must have come up regardless of the broker.
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("OCCUPANCY_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("OCCUPANCY_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
