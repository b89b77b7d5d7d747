package monitor

import "errors"

// Domain-specific errors for the resilience core.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrStaleSession means the inactivity ceiling was exceeded while the
	// transport still reported the session as open. The supervisor
	// force-closes the handle and reconnects.
	ErrStaleSession = errors.New("monitor: session stale, no inbound activity within ceiling")
)
