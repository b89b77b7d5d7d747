package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the occupancy monitor.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Monitor  MonitorConfig  `yaml:"monitor"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MonitorConfig contains the resilience core settings: topics, timers,
// and reconnection behaviour.
type MonitorConfig struct {
	// SubscribeTopic is the sensor topic carrying occupancy payloads.
	// Typically zigbee2mqtt/DEVICE_FRIENDLY_NAME.
	SubscribeTopic string `yaml:"subscribe_topic"`

	// HeartbeatTopic is the side topic for liveness announcements.
	HeartbeatTopic string `yaml:"heartbeat_topic"`

	// HeartbeatInterval is how often to publish heartbeats (seconds).
	HeartbeatInterval int `yaml:"heartbeat_interval"`

	// MaxInactive is the inactivity ceiling (seconds). If no message arrives
	// for longer than this, the connection is treated as stale and torn down
	// even if the transport still reports it as open.
	MaxInactive int `yaml:"max_inactive"`

	// LivenessCheckInterval is how often the staleness check runs (seconds).
	LivenessCheckInterval int `yaml:"liveness_check_interval"`

	// QueueSize bounds the inbound message hand-off between the transport
	// callback and the control loop.
	QueueSize int `yaml:"queue_size"`

	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig contains backoff parameters for reconnection attempts.
type ReconnectConfig struct {
	// MinDelay is the base delay for the first retry (seconds).
	MinDelay int `yaml:"min_delay"`

	// MaxDelay is the backoff ceiling (seconds).
	MaxDelay int `yaml:"max_delay"`

	// Jitter is the random perturbation fraction applied to each delay
	// (0.2 means ±20%). Desynchronises concurrent retrying clients.
	Jitter float64 `yaml:"jitter"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker  MQTTBrokerConfig  `yaml:"broker"`
	Auth    MQTTAuthConfig    `yaml:"auth"`
	Session MQTTSessionConfig `yaml:"session"`
	QoS     int               `yaml:"qos"`

	// ConnectTimeout bounds each connect attempt (seconds). A broker that
	// accepts TCP but never completes the handshake counts as a failure.
	ConnectTimeout int `yaml:"connect_timeout"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTSessionConfig contains session-level protocol settings.
type MQTTSessionConfig struct {
	// Persistent requests a broker-side persistent session (CleanSession=false)
	// so subscription state survives reconnects under the same client ID.
	Persistent bool `yaml:"persistent"`

	// KeepAlive is the protocol keepalive interval (seconds).
	KeepAlive int `yaml:"keep_alive"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: OCCUPANCY_SECTION_KEY
// For example: OCCUPANCY_MQTT_HOST, OCCUPANCY_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
// Used by tests and by occupancyctl when only the database section matters.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
// Timer defaults are layered so that heartbeat < keepalive < inactivity ceiling.
func defaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			SubscribeTopic:        "zigbee2mqtt/SONOFF_SNZB-06P",
			HeartbeatTopic:        "occupancy_monitor/heartbeat",
			HeartbeatInterval:     15,
			MaxInactive:           60,
			LivenessCheckInterval: 5,
			QueueSize:             256,
			Reconnect: ReconnectConfig{
				MinDelay: 1,
				MaxDelay: 60,
				Jitter:   0.2,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "occupancy_monitor",
			},
			Session: MQTTSessionConfig{
				Persistent: true,
				KeepAlive:  30,
			},
			QoS:            1,
			ConnectTimeout: 10,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			Path:        "./data/occupancy.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: OCCUPANCY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("OCCUPANCY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("OCCUPANCY_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("OCCUPANCY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("OCCUPANCY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Monitor
	if v := os.Getenv("OCCUPANCY_SUBSCRIBE_TOPIC"); v != "" {
		cfg.Monitor.SubscribeTopic = v
	}

	// Database
	if v := os.Getenv("OCCUPANCY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("OCCUPANCY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for hard errors.
//
// Soft problems (settings that work but behave surprisingly) are reported
// by Warnings instead, so a questionable config never blocks startup.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Monitor.SubscribeTopic == "" {
		errs = append(errs, "monitor.subscribe_topic is required")
	}
	if c.Monitor.HeartbeatTopic == "" {
		errs = append(errs, "monitor.heartbeat_topic is required")
	}
	if c.Monitor.MaxInactive <= 0 {
		errs = append(errs, "monitor.max_inactive must be positive")
	}
	if c.Monitor.Reconnect.MinDelay <= 0 {
		errs = append(errs, "monitor.reconnect.min_delay must be positive")
	}
	if c.Monitor.Reconnect.MaxDelay < c.Monitor.Reconnect.MinDelay {
		errs = append(errs, "monitor.reconnect.max_delay must be >= min_delay")
	}
	if c.Monitor.Reconnect.Jitter < 0 || c.Monitor.Reconnect.Jitter >= 1 {
		errs = append(errs, "monitor.reconnect.jitter must be in [0, 1)")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required (persistent sessions need a stable identity)")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Warnings returns non-fatal configuration concerns.
//
// The inactivity ceiling and keepalive interval are independently
// configurable; a ceiling at or below the keepalive causes spurious
// reconnects on an otherwise healthy but quiet topic, so it is flagged
// here rather than silently misbehaving.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Monitor.MaxInactive <= c.MQTT.Session.KeepAlive {
		warnings = append(warnings, fmt.Sprintf(
			"monitor.max_inactive (%ds) should exceed mqtt.session.keep_alive (%ds): quiet periods will be treated as stale connections",
			c.Monitor.MaxInactive, c.MQTT.Session.KeepAlive,
		))
	}
	if c.Monitor.HeartbeatInterval >= c.Monitor.MaxInactive {
		warnings = append(warnings, fmt.Sprintf(
			"monitor.heartbeat_interval (%ds) is not shorter than monitor.max_inactive (%ds): external watchers may see gaps during reconnects",
			c.Monitor.HeartbeatInterval, c.Monitor.MaxInactive,
		))
	}

	return warnings
}

// HeartbeatInterval returns the heartbeat publish interval as a Duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Monitor.HeartbeatInterval) * time.Second
}

// MaxInactive returns the inactivity ceiling as a Duration.
func (c *Config) MaxInactive() time.Duration {
	return time.Duration(c.Monitor.MaxInactive) * time.Second
}

// LivenessCheckInterval returns the staleness check period as a Duration.
func (c *Config) LivenessCheckInterval() time.Duration {
	return time.Duration(c.Monitor.LivenessCheckInterval) * time.Second
}

// ConnectTimeout returns the per-attempt connect timeout as a Duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.MQTT.ConnectTimeout) * time.Second
}

// ReconnectMinDelay returns the backoff base delay as a Duration.
func (c *Config) ReconnectMinDelay() time.Duration {
	return time.Duration(c.Monitor.Reconnect.MinDelay) * time.Second
}

// ReconnectMaxDelay returns the backoff ceiling as a Duration.
func (c *Config) ReconnectMaxDelay() time.Duration {
	return time.Duration(c.Monitor.Reconnect.MaxDelay) * time.Second
}

// KeepAlive returns the MQTT keepalive interval as a Duration.
func (c *Config) KeepAlive() time.Duration {
	return time.Duration(c.MQTT.Session.KeepAlive) * time.Second
}
