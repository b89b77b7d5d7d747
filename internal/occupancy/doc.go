// Package occupancy defines the occupancy event model and the consumers
// of the event stream.
//
// This package manages:
//   - Normalising raw sensor payloads into typed occupancy events,
//     dropping non-state messages and duplicate-state repeats
//   - The Sink contract the monitor hands events to
//   - Sink implementations: transition logging, SQLite persistence,
//     and fan-out across several sinks
//
// # Deduplication contract
//
// The normalizer emits an event only when the parsed occupancy value
// differs from the previous one, with one exception: the first payload
// after Reset (called on every reconnect) is always emitted, because the
// sensor may have changed state while the connection was down. Sinks must
// therefore accept events idempotently keyed by (timestamp, occupied);
// the SQLite repository does this with INSERT OR IGNORE.
package occupancy
