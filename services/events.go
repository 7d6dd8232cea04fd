package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sample-app/config"
	"sample-app/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventItemCreated is the type field of ItemCreatedEvent
const EventItemCreated = "item.created"

// dialTimeout bounds the TCP dial plus the AMQP handshake of a (re)connect.
// Publishing runs on the request path, so it stays well below the 30s
// library default.
const dialTimeout = 3 * time.Second

// ItemCreatedEvent is published after an item has been inserted.
type ItemCreatedEvent struct {
	Type       string `json:"type"`
	Item       Item   `json:"item"`
	OccurredAt string `json:"occurred_at"`
}

// EventPublisher publishes item events to a durable RabbitMQ queue.
// The connection is shared and re-dialed when the broker drops it; each
// publish uses its own channel.
type EventPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewEventPublisher dials the broker and declares the queue.
func NewEventPublisher(cfg config.EventsConfig) (*EventPublisher, error) {
	p := &EventPublisher{url: cfg.URL, queue: cfg.Queue, dialTimeout: dialTimeout}
	conn, err := p.connection(context.Background())
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	return p, nil
}

// PublishItemCreated sends an item.created event as a persistent message.
func (p *EventPublisher) PublishItemCreated(ctx context.Context, item Item) error {
	now := time.Now().UTC()
	body, err := json.Marshal(ItemCreatedEvent{
		Type:       EventItemCreated,
		Item:       item,
		OccurredAt: now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.connection(ctx)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Type:         EventItemCreated,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventItemCreated, err)
	}
	return nil
}

// Close closes the broker connection.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// connection returns the shared connection, re-dialing when it is closed.
// The dial never outlives ctx's deadline.
func (p *EventPublisher) connection(ctx context.Context) (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	timeout := p.dialTimeout
	if timeout <= 0 {
		timeout = dialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, fmt.Errorf("dial rabbitmq: %w", context.DeadlineExceeded)
		}
		if left < timeout {
			timeout = left
		}
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:   amqp.DefaultDial(timeout),
		Locale: "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	if p.conn != nil {
		logger.Logger.Warn("rabbitmq connection re-established", zap.String("queue", p.queue))
	}
	p.conn = conn
	return conn, nil
}
