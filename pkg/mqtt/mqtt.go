package mqtt

import (
	"WakeGuard/internal/entity"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const alertQoS byte = 1

type IPublisher interface {
	PublishAlert(ctx context.Context, event entity.AlertEvent) error
	Disconnect()
}

type publisher struct {
	log    *logrus.Logger
	client paho.Client
	topic  string

	mu        sync.RWMutex
	connected bool
}

// New connects to broker and returns a publisher for topic. A bare host:port
// broker is dialled over tcp.
func New(log *logrus.Logger, broker, topic, clientID string) (IPublisher, error) {
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	if clientID == "" {
		clientID = "wakeguard-" + uuid.NewString()
	}

	p := &publisher{log: log, topic: topic}

	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(paho.Client) {
		p.setConnected(true)
		log.WithFields(logrus.Fields{
			"broker":    broker,
			"client_id": clientID,
		}).Info("MQTT connection established")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		p.setConnected(false)
		log.WithFields(logrus.Fields{
			"broker": broker,
			"error":  err.Error(),
		}).Warn("MQTT connection lost, reconnecting")
	}

	p.client = paho.NewClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}
	p.setConnected(true)

	return p, nil
}

func (p *publisher) PublishAlert(ctx context.Context, event entity.AlertEvent) error {
	if !p.isConnected() {
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	wait := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}

	token := p.client.Publish(p.topic, alertQoS, false, payload)
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"topic":    p.topic,
		"event_id": event.ID,
		"size":     len(payload),
	}).Debug("Alert event published")
	return nil
}

func (p *publisher) Disconnect() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
}

func (p *publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *publisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}
