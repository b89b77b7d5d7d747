package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/occupancy-core/internal/infrastructure/logging"
	"github.com/nerrad567/occupancy-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/occupancy-core/internal/occupancy"
)

// drainTimeout bounds event flushing during shutdown so a wedged sink
// cannot hold the process open.
const drainTimeout = 5 * time.Second

// Session is the transport handle the supervisor drives. *mqtt.Session
// satisfies it; tests substitute a fake.
type Session interface {
	// Connect establishes a fresh connection, force-closing any previous
	// handle first. The attempt is bounded by ctx.
	Connect(ctx context.Context) error

	// Subscribe registers the sensor topic handler on the current
	// connection. Subscriptions do not survive reconnects.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Publish sends a payload on a topic. Used by the heartbeat emitter.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Disconnect force-closes the current handle. Idempotent.
	Disconnect()

	// Lost yields at most one buffered notification per unexpected
	// disconnect.
	Lost() <-chan error
}

// Config carries the supervisor's tuning knobs, already resolved to
// durations by the caller.
type Config struct {
	// SubscribeTopic is the sensor topic to (re)subscribe on every
	// successful connect.
	SubscribeTopic string

	// QoS applies to the sensor subscription.
	QoS byte

	// ConnectTimeout bounds each individual connect attempt.
	ConnectTimeout time.Duration

	// MaxInactive is the inactivity ceiling for staleness detection.
	MaxInactive time.Duration

	// LivenessCheckInterval is how often the staleness check fires.
	LivenessCheckInterval time.Duration

	// QueueSize bounds the transport-to-loop hand-off channel.
	QueueSize int
}

// inboundMessage is a raw payload captured on the transport callback,
// stamped at arrival so queueing delay does not skew event times.
type inboundMessage struct {
	at      time.Time
	payload []byte
}

// Supervisor owns the connection lifecycle end to end: it dials,
// subscribes, retries with backoff, tears down stale sessions, and
// feeds normalized occupancy events to the sink.
//
// Exactly one goroutine runs the control loop (Run). The transport
// callback and the heartbeat emitter touch only the liveness timestamp,
// the bounded inbound channel, and the state getter.
type Supervisor struct {
	cfg     Config
	session Session
	backoff *BackoffPolicy
	norm    *occupancy.Normalizer
	sink    occupancy.Sink
	live    *LivenessMonitor
	logger  *logging.Logger

	inbound chan inboundMessage

	mu    sync.Mutex
	state ConnectionState
}

// NewSupervisor creates a supervisor in the Disconnected state.
//
// Parameters:
//   - cfg: Resolved tuning knobs
//   - session: Transport handle to drive
//   - backoff: Retry delay policy
//   - sink: Destination for normalized occupancy events
//   - logger: Structured logger
//
// Returns:
//   - *Supervisor: Ready for Run
func NewSupervisor(cfg Config, session Session, backoff *BackoffPolicy, sink occupancy.Sink, logger *logging.Logger) *Supervisor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Supervisor{
		cfg:     cfg,
		session: session,
		backoff: backoff,
		norm:    occupancy.NewNormalizer(),
		sink:    sink,
		live:    NewLivenessMonitor(),
		logger:  logger,
		inbound: make(chan inboundMessage, cfg.QueueSize),
		state:   StateDisconnected,
	}
}

// State returns the current connection state. Safe to call from any
// goroutine; the heartbeat emitter polls it.
func (s *Supervisor) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the control loop until ctx is cancelled.
//
// The loop never gives up on the broker: connect failures retry forever
// with backoff. On shutdown the session handle is closed, queued events
// are flushed to the sink, and Run returns nil.
//
// Parameters:
//   - ctx: Cancellation interrupts connect attempts and backoff waits
//
// Returns:
//   - error: Always nil; shutdown via ctx is the normal exit
func (s *Supervisor) Run(ctx context.Context) error {
	defer func() {
		s.setState(StateDisconnected)
		s.session.Disconnect()
		s.drain()
		s.logger.Info("supervisor stopped")
	}()

	s.setState(StateConnecting)
	if err := s.connectLoop(ctx); err != nil {
		return nil
	}

	ticker := time.NewTicker(s.cfg.LivenessCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-s.inbound:
			s.handleMessage(ctx, msg)

		case err := <-s.session.Lost():
			s.logger.Warn("connection lost", "error", err)
			s.setState(StateReconnecting)
			if rerr := s.connectLoop(ctx); rerr != nil {
				return nil
			}

		case <-ticker.C:
			if s.State() != StateConnected {
				continue
			}
			if s.live.Stale(s.cfg.MaxInactive) {
				s.logger.Warn("forcing reconnect",
					"error", ErrStaleSession,
					"since_last_activity", s.live.SinceLastActivity().Round(time.Second),
					"max_inactive", s.cfg.MaxInactive)
				s.session.Disconnect()
				s.setState(StateReconnecting)
				if rerr := s.connectLoop(ctx); rerr != nil {
					return nil
				}
			}
		}
	}
}

// connectLoop attempts to establish a working session, retrying with
// backoff until it succeeds or ctx is cancelled. The caller sets the
// state (Connecting or Reconnecting) before entry; on success the loop
// sets Connected.
func (s *Supervisor) connectLoop(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		err := s.establish(cctx)
		cancel()

		if err == nil {
			// A reconnect may have skipped transitions; force the next
			// state through even if it matches the last emitted one.
			s.norm.Reset()
			s.live.Touch()
			s.setState(StateConnected)
			s.logger.Info("connected", "topic", s.cfg.SubscribeTopic, "attempts", attempt+1)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt++
		delay := s.backoff.Delay(attempt)
		s.logger.Warn("connect attempt failed",
			"error", err,
			"attempt", attempt,
			"retry_in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// establish dials and subscribes as one unit. A session that connects
// but cannot subscribe is useless, so it is torn down and the whole
// attempt reported as failed.
func (s *Supervisor) establish(ctx context.Context) error {
	if err := s.session.Connect(ctx); err != nil {
		return err
	}
	if err := s.session.Subscribe(s.cfg.SubscribeTopic, s.cfg.QoS, s.onMessage); err != nil {
		s.session.Disconnect()
		return err
	}
	return nil
}

// onMessage runs on the transport callback goroutine. It must return
// quickly: stamp, copy, enqueue.
func (s *Supervisor) onMessage(_ string, payload []byte) {
	s.live.Touch()

	msg := inboundMessage{
		at:      time.Now().UTC(),
		payload: append([]byte(nil), payload...),
	}
	select {
	case s.inbound <- msg:
	default:
		// The loop is not keeping up. Dropping is safe: the sensor
		// re-reports its state and the normalizer re-emits on change.
		s.logger.Warn("inbound queue full, dropping payload", "queue_size", s.cfg.QueueSize)
	}
}

// handleMessage normalizes one raw payload and records any resulting
// transition. Nothing here is fatal.
func (s *Supervisor) handleMessage(ctx context.Context, msg inboundMessage) {
	event, err := s.norm.Normalize(msg.at, msg.payload)
	if err != nil {
		if errors.Is(err, occupancy.ErrMalformedPayload) {
			s.logger.Warn("dropping malformed payload", "error", err, "payload", string(msg.payload))
			return
		}
		s.logger.Error("normalize failed", "error", err)
		return
	}
	if event == nil {
		// Same state as before; nothing to record.
		return
	}

	if err := s.sink.Record(ctx, *event); err != nil {
		s.logger.Error("recording event failed", "error", err, "occupied", event.Occupied)
	}
}

// drain flushes messages still queued at shutdown so transitions that
// arrived before cancellation are not lost.
func (s *Supervisor) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case msg := <-s.inbound:
			s.handleMessage(ctx, msg)
		default:
			return
		}
	}
}

func (s *Supervisor) setState(state ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
