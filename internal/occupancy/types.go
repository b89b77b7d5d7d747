package occupancy

import (
	"context"
	"time"
)

// Event is a single accepted occupancy state transition.
//
// Events are immutable once constructed and are produced in arrival
// order. RawPayload preserves the sensor's full message verbatim; the
// monitor only interprets the occupancy field.
type Event struct {
	// Timestamp is when the payload was received.
	Timestamp time.Time

	// Occupied is the parsed occupancy state.
	Occupied bool

	// RawPayload is the original sensor payload, untouched.
	RawPayload []byte
}

// Sink consumes the sequential occupancy event feed.
//
// This is the sole contract between the resilience core and any
// reporting or persistence collaborator. Implementations must tolerate
// duplicate delivery of the same (timestamp, occupied) pair.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// StoredEvent is an occupancy event as persisted in SQLite.
type StoredEvent struct {
	ID         int64
	Timestamp  time.Time
	Occupied   bool
	RawPayload []byte
}

// Stats summarises the persisted event log.
type Stats struct {
	TotalEvents    int64
	PresenceEvents int64
	AbsenceEvents  int64
	FirstEvent     time.Time
	LastEvent      time.Time
	DaysCovered    int
}
