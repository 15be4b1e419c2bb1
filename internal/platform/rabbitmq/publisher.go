package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards events to a durable topic exchange, routed by event type.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	mu       sync.Mutex
	logger   *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// Dial connects to the broker in cfg and declares the exchange.
func Dial(cfg config.MessagingConfig, l *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	p, err := newPublisher(ch, cfg.Exchange, l)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, l *slog.Logger) (*Publisher, error) {
	if l == nil {
		l = slog.Default()
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}

	return &Publisher{
		ch:       ch,
		exchange: exchange,
		logger:   l.With(slog.String("component", "rabbitmq_publisher")),
	}, nil
}

// HandleEvent publishes event as a persistent JSON message.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	// The mutation has committed; a client hanging up must not drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(pubCtx, p.exchange, event.Type, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		log.Error("failed to publish event",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}

	log.Debug("published event",
		slog.String("event_type", event.Type),
		slog.String("exchange", p.exchange))
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
