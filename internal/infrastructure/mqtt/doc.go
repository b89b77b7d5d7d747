// Package mqtt provides the transport session for the occupancy monitor.
//
// This package wraps eclipse/paho.mqtt.golang into a thin session handle:
//   - Connect/Disconnect with a bounded, context-aware connect
//   - Topic subscription and publishing
//   - Connection-lost notifications on a channel
//   - Persistent session support (CleanSession=false under a stable client ID)
//
// # Who owns reconnection
//
// Unlike most paho wrappers, this one disables the library's auto-reconnect
// and connect-retry machinery. The monitor package's supervisor owns the
// full connection lifecycle: it decides when to reconnect, with what
// backoff, and when an apparently-open session is stale and must be torn
// down. The library's own notion of "connected" is not trusted for
// liveness, because a broker can hold a TCP connection open while silently
// dropping subscription delivery. The session's job is only to be an
// honest, forcibly-closable handle.
//
// # Usage
//
//	session := mqtt.NewSession(cfg.MQTT)
//	if err := session.Connect(ctx); err != nil {
//	    // retry via supervisor backoff
//	}
//	err = session.Subscribe("zigbee2mqtt/sensor", 1, func(topic string, payload []byte) {
//	    // hand off quickly; runs on paho's router goroutine
//	})
package mqtt
