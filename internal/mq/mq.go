package mq

import (
	"context"
	"encoding/json"
)

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a delivered message. A non-nil error nacks the
// message so the broker can redeliver it.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each broker client (RabbitMQ, Pub/Sub).
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ fronts a broker backend. The server publishes post lifecycle
// events through it; downstream feed and search indexers subscribe.
type MQ struct {
	backend Backend
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends raw bytes to the named channel and returns the
// broker-assigned message id.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// PublishJSON marshals payload and publishes it on the named channel.
func (m *MQ) PublishJSON(ctx context.Context, channel string, payload any, attrs map[string]string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel until ctx is done
// or the backend fails.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

func (m *MQ) Close() error {
	return m.backend.Close()
}
