package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TopicPrefix is prepended to the peer id to form the MQTT topic.
const TopicPrefix = "metaverse/peers/"

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish before the command's deadline.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTPublisher is the subset of mqtt.Client used by MQTTSink.
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes each command on the topic of its peer.
type MQTTSink struct {
	pub MQTTPublisher
	qos byte
}

// NewMQTT returns a renderer publishing through pub at QoS 1.
func NewMQTT(pub MQTTPublisher, timeout time.Duration) *Remote {
	return NewRemote(&MQTTSink{pub: pub, qos: 1}, timeout)
}

func (s *MQTTSink) Send(ctx context.Context, cmd Command) error {
	payload, err := encode(cmd)
	if err != nil {
		return err
	}
	token := s.pub.Publish(TopicPrefix+cmd.ID, s.qos, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %s", ErrPublishTimeout, cmd.Op)
	}
}

// DialMQTT connects a client to broker with automatic reconnection.
func DialMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", broker, err)
	}
	return client, nil
}
