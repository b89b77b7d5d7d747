package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/logging"
)

// Heartbeat periodically publishes a liveness announcement on a side
// topic so external watchers can distinguish "monitor down" from "no
// occupancy transitions lately".
//
// Publication is strictly best-effort: ticks while disconnected are
// skipped, publish failures are logged and swallowed, and nothing here
// ever influences the supervisor's state machine.
type Heartbeat struct {
	topic    string
	interval time.Duration
	clientID string
	session  Session
	stateFn  func() ConnectionState
	logger   *logging.Logger

	// instance identifies this process across restarts in the heartbeat
	// stream. Generated once at construction.
	instance string
	started  time.Time
	sequence uint64
}

// heartbeatPayload is the published JSON document.
type heartbeatPayload struct {
	ClientID  string `json:"client_id"`
	Instance  string `json:"instance"`
	State     string `json:"state"`
	Sequence  uint64 `json:"sequence"`
	UptimeSec int64  `json:"uptime_seconds"`
	Timestamp string `json:"timestamp"`
}

// NewHeartbeat creates an emitter. Call Run to start publishing.
//
// Parameters:
//   - topic: Heartbeat topic
//   - interval: Time between publications
//   - clientID: The MQTT client identity, echoed in each payload
//   - session: Transport to publish through
//   - stateFn: Current supervisor state; publication only happens when
//     it reports Connected
//   - logger: Structured logger
//
// Returns:
//   - *Heartbeat: Ready for Run
func NewHeartbeat(topic string, interval time.Duration, clientID string, session Session, stateFn func() ConnectionState, logger *logging.Logger) *Heartbeat {
	return &Heartbeat{
		topic:    topic,
		interval: interval,
		clientID: clientID,
		session:  session,
		stateFn:  stateFn,
		logger:   logger,
		instance: uuid.NewString(),
		started:  time.Now(),
	}
}

// Run publishes heartbeats on the configured interval until ctx is
// cancelled. Always returns nil; a dead broker only means skipped
// beats, never an error.
func (h *Heartbeat) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.beat()
		}
	}
}

// beat publishes a single heartbeat if the supervisor is connected.
func (h *Heartbeat) beat() {
	state := h.stateFn()
	if state != StateConnected {
		return
	}

	h.sequence++
	payload, err := json.Marshal(heartbeatPayload{
		ClientID:  h.clientID,
		Instance:  h.instance,
		State:     state.String(),
		Sequence:  h.sequence,
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("heartbeat marshal failed", "error", err)
		return
	}

	// QoS 0, not retained. A missed beat is information in itself and a
	// stale retained beat would only mislead watchers.
	if err := h.session.Publish(h.topic, payload, 0, false); err != nil {
		h.logger.Warn("heartbeat publish failed", "error", err)
	}
}
