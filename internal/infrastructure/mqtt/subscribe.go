package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Subscribe registers a handler for messages on the specified topic.
//
// The subscription is NOT tracked for automatic restoration: the
// supervisor re-issues the identical subscription spec after every
// reconnect, which doubles as verification that the new session is
// actually functional. A malformed or failed subscription acknowledgment
// is an error here and the supervisor treats it as a connect failure.
//
// Parameters:
//   - topic: The topic pattern to subscribe to (wildcards allowed)
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - handler: Callback invoked on the paho router goroutine per message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (s *Session) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	client := s.current()
	if client == nil {
		return ErrNotConnected
	}

	token := client.Subscribe(topic, qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(defaultOpTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOpTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}
