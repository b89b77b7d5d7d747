package monitor

import (
	"sync/atomic"
	"time"
)

// LivenessMonitor tracks the time of the last inbound message so the
// supervisor can detect half-open connections: sessions the transport
// still reports as connected but that have silently stopped delivering.
//
// Touch is called from the transport callback goroutine and Stale from
// the control loop, so the timestamp is a single atomic value.
type LivenessMonitor struct {
	// lastActivity is the UnixNano of the most recent Touch.
	lastActivity atomic.Int64
}

// NewLivenessMonitor returns a monitor primed with the current time, so
// a freshly connected session gets a full ceiling before its first
// staleness verdict.
func NewLivenessMonitor() *LivenessMonitor {
	m := &LivenessMonitor{}
	m.Touch()
	return m
}

// Touch records inbound activity. Every received message counts,
// including malformed ones; a broker delivering garbage is still a
// broker delivering.
func (m *LivenessMonitor) Touch() {
	m.lastActivity.Store(time.Now().UnixNano())
}

// Stale reports whether the inactivity ceiling has been exceeded.
//
// Parameters:
//   - maxInactive: The configured ceiling
//
// Returns:
//   - bool: true if no activity was seen within the ceiling
func (m *LivenessMonitor) Stale(maxInactive time.Duration) bool {
	return m.SinceLastActivity() > maxInactive
}

// SinceLastActivity returns the elapsed time since the last Touch.
func (m *LivenessMonitor) SinceLastActivity() time.Duration {
	last := time.Unix(0, m.lastActivity.Load())
	return time.Since(last)
}
