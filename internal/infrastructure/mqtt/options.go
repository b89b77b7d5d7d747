package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultOpTimeout is the maximum time to wait for publish and
	// subscribe acknowledgments.
	defaultOpTimeout = 5 * time.Second

	// disconnectQuiesceMs is the time allowed for in-flight operations
	// when disconnecting (milliseconds).
	disconnectQuiesceMs = 250

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

// buildClientOptions creates paho MQTT options from monitor config.
//
// This configures:
//   - Broker URL and stable client ID
//   - Authentication credentials (if provided)
//   - Persistent session (CleanSession=false) when requested, so the
//     broker retains subscription state across reconnects
//   - Protocol keepalive interval
//   - Auto-reconnect and connect-retry DISABLED: the supervisor owns
//     the reconnection lifecycle
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("tcp://%s:%d", cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Persistent session: the broker keeps the subscription alive across
	// reconnects under the same client ID and queues QoS>=1 messages.
	opts.SetCleanSession(!cfg.Session.Persistent)

	// The supervisor drives reconnects with its own backoff policy.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)
	opts.SetKeepAlive(time.Duration(cfg.Session.KeepAlive) * time.Second)

	// Serialise handler callbacks so inbound ordering is preserved.
	opts.SetOrderMatters(true)

	return opts
}
