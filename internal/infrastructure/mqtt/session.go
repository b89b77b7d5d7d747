package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/config"
)

// Session is a thin handle over a single MQTT connection.
//
// The session does not reconnect on its own; the supervisor drives its
// lifecycle. At most one underlying client exists at a time: Connect
// force-closes any previous handle before dialling, so a zombie socket
// from a stale connection can never leak past a reconnect.
//
// Thread Safety:
//   - All methods are safe for concurrent use. In practice only the
//     supervisor's control loop calls Connect/Disconnect/Subscribe, while
//     the heartbeat emitter calls Publish from its own goroutine.
type Session struct {
	cfg config.MQTTConfig

	// client is the current paho handle, nil while disconnected.
	client pahomqtt.Client
	mu     sync.Mutex

	// lost receives one notification per unexpected disconnect.
	lost chan error
}

// MessageHandler is the callback signature for received messages.
//
// Handlers run on the paho router goroutine and must hand off quickly:
// update liveness, enqueue the payload, return. Anything slower stalls
// the transport's inbound processing.
type MessageHandler func(topic string, payload []byte)

// NewSession creates a disconnected session for the given broker config.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//
// Returns:
//   - *Session: Session ready for Connect
func NewSession(cfg config.MQTTConfig) *Session {
	return &Session{
		cfg:  cfg,
		lost: make(chan error, 1),
	}
}

// Connect establishes a connection to the MQTT broker.
//
// The attempt is bounded by ctx: a broker that accepts TCP but never
// completes the protocol handshake is treated as a failed attempt, not
// an indefinite wait. Any previous handle is force-closed first.
//
// Parameters:
//   - ctx: Bounds the attempt; typically carries the connect timeout
//
// Returns:
//   - error: ErrConnectionFailed (wrapped) if the attempt fails
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.client != nil {
		// Stale handle from a previous session. Force close before dialling.
		s.client.Disconnect(0)
		s.client = nil
	}

	// Drop any lost-notification from the previous session so the
	// supervisor doesn't mistake it for a failure of the new one.
	select {
	case <-s.lost:
	default:
	}

	opts := buildClientOptions(s.cfg)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		s.notifyLost(err)
	})

	client := pahomqtt.NewClient(opts)
	s.client = client
	s.mu.Unlock()

	token := client.Connect()
	select {
	case <-ctx.Done():
		client.Disconnect(0)
		s.clear(client)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	case <-token.Done():
	}

	if err := token.Error(); err != nil {
		client.Disconnect(0)
		s.clear(client)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return nil
}

// Disconnect force-closes the current handle.
//
// Safe to call in any state and idempotent; the supervisor relies on
// this for both graceful shutdown and tearing down stale sessions.
func (s *Session) Disconnect() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(disconnectQuiesceMs)
	}
}

// Lost returns the channel carrying unexpected-disconnect notifications.
//
// At most one notification is buffered; the supervisor reads it as the
// signal to enter its reconnect path.
func (s *Session) Lost() <-chan error {
	return s.lost
}

// IsConnected reports whether the underlying transport believes the
// session is alive. This is necessary but not sufficient for liveness;
// staleness detection is layered on top by the monitor.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	return client != nil && client.IsConnected()
}

// notifyLost delivers a disconnect notification without blocking the
// paho callback goroutine. A second disconnect while one is pending
// carries no extra information and is dropped.
func (s *Session) notifyLost(err error) {
	select {
	case s.lost <- err:
	default:
	}
}

// clear removes the handle only if it is still the current one, so a
// failed attempt cannot clobber a newer session.
func (s *Session) clear(client pahomqtt.Client) {
	s.mu.Lock()
	if s.client == client {
		s.client = nil
	}
	s.mu.Unlock()
}

// current returns the active handle or nil.
func (s *Session) current() pahomqtt.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}
