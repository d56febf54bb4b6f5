// Package notify publishes engine events to an MQTT broker for external
// consumers (floor displays, WMS integrations). The notifier is optional:
// with no broker configured the simulation runs without it.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/warehouse-sim/backend/internal/models"
)

// Config holds the MQTT connection settings. An empty Broker disables the
// notifier.
type Config struct {
	Broker    string
	ClientID  string
	Username  string
	Password  string
	TopicBase string
}

// DefaultConfig returns a disabled notifier configuration.
func DefaultConfig() Config {
	return Config{
		Broker:    "",
		ClientID:  "warehouse-sim",
		TopicBase: "warehouse/robot",
	}
}

// Notifier publishes tagged engine events as JSON messages on
// <topic_base>/<event_kind>.
type Notifier struct {
	client    mqtt.Client
	topicBase string
}

// NewNotifier connects to the broker. Returns an error if the connection
// cannot be established; callers treat the notifier as optional.
func NewNotifier(cfg Config) (*Notifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		fmt.Printf("[Notify] MQTT connected to %s\n", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		fmt.Printf("[Notify] MQTT connection lost: %v\n", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Notifier{client: client, topicBase: cfg.TopicBase}, nil
}

// Publish sends one event. Failures are logged, never fatal: the notifier
// must not be able to stall the tick loop.
func (n *Notifier) Publish(ev models.Event) {
	if !n.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		fmt.Printf("[Notify] Failed to encode %s event: %v\n", ev.Kind(), err)
		return
	}

	topic := n.topicBase + "/" + ev.Kind()
	token := n.client.Publish(topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			fmt.Printf("[Notify] Publish to %s failed: %v\n", topic, token.Error())
		}
	}()
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	n.client.Disconnect(250)
}
