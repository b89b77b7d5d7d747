package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
monitor:
  subscribe_topic: "zigbee2mqtt/hall-sensor"
  heartbeat_topic: "occupancy_monitor/heartbeat"
  max_inactive: 90
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "occupancy-test"
  session:
    persistent: true
    keep_alive: 30
database:
  path: "/tmp/occupancy-test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Monitor.SubscribeTopic != "zigbee2mqtt/hall-sensor" {
		t.Errorf("Monitor.SubscribeTopic = %q, want %q", cfg.Monitor.SubscribeTopic, "zigbee2mqtt/hall-sensor")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Monitor.MaxInactive != 90 {
		t.Errorf("Monitor.MaxInactive = %d, want 90", cfg.Monitor.MaxInactive)
	}
	// Defaults survive partial files.
	if cfg.Monitor.Reconnect.MaxDelay != 60 {
		t.Errorf("Monitor.Reconnect.MaxDelay = %d, want default 60", cfg.Monitor.Reconnect.MaxDelay)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OCCUPANCY_MQTT_HOST", "env-broker")
	t.Setenv("OCCUPANCY_MQTT_PORT", "8883")
	t.Setenv("OCCUPANCY_SUBSCRIBE_TOPIC", "zigbee2mqtt/env-sensor")

	cfg, err := Load(writeConfig(t, "mqtt:\n  broker:\n    host: file-broker\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "env-broker")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want env override 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.Monitor.SubscribeTopic != "zigbee2mqtt/env-sensor" {
		t.Errorf("Monitor.SubscribeTopic = %q, want env override", cfg.Monitor.SubscribeTopic)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			modify:  func(_ *Config) {},
			wantErr: "",
		},
		{
			name:    "empty subscribe topic",
			modify:  func(c *Config) { c.Monitor.SubscribeTopic = "" },
			wantErr: "monitor.subscribe_topic",
		},
		{
			name:    "empty heartbeat topic",
			modify:  func(c *Config) { c.Monitor.HeartbeatTopic = "" },
			wantErr: "monitor.heartbeat_topic",
		},
		{
			name:    "zero inactivity ceiling",
			modify:  func(c *Config) { c.Monitor.MaxInactive = 0 },
			wantErr: "monitor.max_inactive",
		},
		{
			name:    "max delay below min delay",
			modify:  func(c *Config) { c.Monitor.Reconnect.MaxDelay = 0 },
			wantErr: "monitor.reconnect.max_delay",
		},
		{
			name:    "jitter out of range",
			modify:  func(c *Config) { c.Monitor.Reconnect.Jitter = 1.5 },
			wantErr: "monitor.reconnect.jitter",
		},
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "empty client id",
			modify:  func(c *Config) { c.MQTT.Broker.ClientID = "" },
			wantErr: "mqtt.broker.client_id",
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "database enabled without path",
			modify:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Warnings_CeilingBelowKeepAlive(t *testing.T) {
	cfg := Default()
	cfg.Monitor.MaxInactive = 20
	cfg.MQTT.Session.KeepAlive = 30

	// A ceiling below the keepalive is legal but flagged: the connection
	// would be declared stale before the protocol even pings the broker.
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil (warning, not error)", err)
	}

	warnings := cfg.Warnings()
	if len(warnings) == 0 {
		t.Fatal("Warnings() = empty, want ceiling/keepalive warning")
	}
	if !strings.Contains(warnings[0], "max_inactive") {
		t.Errorf("Warnings()[0] = %q, want mention of max_inactive", warnings[0])
	}
}

func TestConfig_Warnings_CleanDefaults(t *testing.T) {
	cfg := Default()
	if warnings := cfg.Warnings(); len(warnings) != 0 {
		t.Errorf("Warnings() on defaults = %v, want none", warnings)
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.MaxInactive(); got != 60*time.Second {
		t.Errorf("MaxInactive() = %v, want 60s", got)
	}
	if got := cfg.HeartbeatInterval(); got != 15*time.Second {
		t.Errorf("HeartbeatInterval() = %v, want 15s", got)
	}
	if got := cfg.KeepAlive(); got != 30*time.Second {
		t.Errorf("KeepAlive() = %v, want 30s", got)
	}
	if got := cfg.ReconnectMinDelay(); got != time.Second {
		t.Errorf("ReconnectMinDelay() = %v, want 1s", got)
	}
	if got := cfg.ReconnectMaxDelay(); got != 60*time.Second {
		t.Errorf("ReconnectMaxDelay() = %v, want 60s", got)
	}
}
