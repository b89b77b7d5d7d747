package occupancy

import (
	"encoding/json"
	"fmt"
	"time"
)

// Normalizer turns raw sensor payloads into a clean stream of state
// transitions.
//
// It holds a single piece of state: the last emitted occupancy value.
// The cell is owned by the monitor's control loop; Normalize is never
// called concurrently.
type Normalizer struct {
	// prev is the last emitted occupancy value, nil when no state has
	// been observed since the last Reset.
	prev *bool
}

// sensorPayload is the subset of the sensor's JSON the monitor reads.
// All other fields are opaque and preserved via Event.RawPayload.
type sensorPayload struct {
	Occupancy *json.RawMessage `json:"occupancy"`
}

// NewNormalizer creates a Normalizer with no observed state.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize parses a raw payload into an occupancy event.
//
// Returns (nil, nil) when the parsed value equals the previous one:
// duplicate-state repeats produce no event. Malformed payloads return
// ErrMalformedPayload and leave the previous state untouched, so a
// corrupt message can never mask a real transition.
//
// Parameters:
//   - at: Arrival time, stamped onto the event
//   - payload: Raw sensor payload
//
// Returns:
//   - *Event: The accepted transition, or nil if deduplicated
//   - error: ErrMalformedPayload (wrapped) if the payload doesn't parse
func (n *Normalizer) Normalize(at time.Time, payload []byte) (*Event, error) {
	var parsed sensorPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrMalformedPayload, err)
	}
	if parsed.Occupancy == nil {
		return nil, fmt.Errorf("%w: missing occupancy field", ErrMalformedPayload)
	}

	occupied, err := coerceBool(*parsed.Occupancy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if n.prev != nil && *n.prev == occupied {
		return nil, nil // Duplicate state, no transition.
	}

	n.prev = &occupied

	raw := make([]byte, len(payload))
	copy(raw, payload)

	return &Event{
		Timestamp:  at,
		Occupied:   occupied,
		RawPayload: raw,
	}, nil
}

// Reset clears the previous-state cell.
//
// Called after every reconnect: the first state observed on a fresh
// session is always emitted, even if it matches the last one seen
// before the disconnect, because intermediate transitions may have been
// missed while offline.
func (n *Normalizer) Reset() {
	n.prev = nil
}

// Previous returns the last emitted occupancy value, or nil if none.
func (n *Normalizer) Previous() *bool {
	return n.prev
}

// coerceBool interprets the occupancy field. Sensors disagree on the
// wire type: zigbee2mqtt publishes true/false, others publish 1/0.
func coerceBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0, nil
	}

	return false, fmt.Errorf("occupancy field %q is not boolean-coercible", string(raw))
}
