// Package monitor implements the connection-resilience core of the
// occupancy monitor.
//
// This package manages:
//   - The reconnection supervisor: a single control loop owning the
//     transport session lifecycle and the connection state machine
//   - Exponential backoff with jitter between reconnect attempts
//   - Staleness detection for sessions that look open but have stopped
//     delivering data (broker-side half-open TCP connections)
//   - Periodic heartbeat publication on a side topic
//
// # Ownership model
//
// All mutable state - the session handle, connection state, backoff
// attempt counter, and the normalizer's previous-state cell - is owned
// by the supervisor's control loop. The transport callback only touches
// the liveness timestamp (a single atomic value) and pushes raw payloads
// into a bounded channel that the loop drains, so no other locking is
// needed. The one read-side exception is State(), which the heartbeat
// emitter polls; it is guarded separately.
//
// # Failure philosophy
//
// Nothing in normal operation is fatal. Connect errors are always
// retried with backoff; malformed payloads are dropped and logged;
// heartbeat publish failures are swallowed. The loop runs until the
// context is cancelled, at which point pending backoff waits are
// interrupted, timers stop, the session handle closes exactly once, and
// queued events are drained to the sink before Run returns.
package monitor
