package monitor

// ConnectionState describes where the supervisor is in its lifecycle.
//
// Transitions (driven exclusively by the control loop):
//
//	Disconnected -> Connecting     on startup
//	Connecting   -> Connected      attempt succeeded and subscription confirmed
//	Connecting   -> Connecting     attempt failed, retrying after backoff
//	Connected    -> Reconnecting   connection lost or session stale
//	Reconnecting -> Connected      attempt succeeded and subscription confirmed
//	Reconnecting -> Reconnecting   attempt failed, retrying after backoff
//	any          -> Disconnected   shutdown
//
// Connecting and Reconnecting behave identically; the distinction exists
// so logs and heartbeats can tell a cold start from a recovery.
type ConnectionState int

const (
	// StateDisconnected is the initial and terminal state.
	StateDisconnected ConnectionState = iota

	// StateConnecting means the first connection attempt cycle is running.
	StateConnecting

	// StateConnected means the session is up and the sensor subscription
	// has been confirmed.
	StateConnected

	// StateReconnecting means a previously working connection was lost and
	// the retry cycle is running.
	StateReconnecting
)

// String returns the lowercase name used in logs and heartbeat payloads.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
