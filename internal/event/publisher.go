package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/logger"
)

// RoutingAttemptCompleted is the routing key for finished attempts.
const RoutingAttemptCompleted = "quiz.attempt.completed"

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "quiz.events"

// AttemptCompleted is the message body published for a finished attempt.
type AttemptCompleted struct {
	EventType  string         `json:"eventType"`
	OccurredAt time.Time      `json:"occurredAt"`
	Attempt    domain.Attempt `json:"attempt"`
	Percentage int            `json:"percentage"`
}

// Publisher sends quiz events to a RabbitMQ topic exchange.
// A publisher built without a URL is disabled and drops every event.
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	log      *logger.Logger
}

func NewPublisher(url, exchange string, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Discard()
	}
	if url == "" {
		log.Entry().Warn("amqp url is empty, event publishing is disabled")
		return &Publisher{enabled: false, log: log}, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		log:      log,
	}, nil
}

// Enabled reports whether events actually leave the process.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// PublishAttempt announces a finished attempt on quiz.attempt.completed.
func (p *Publisher) PublishAttempt(ctx context.Context, attempt domain.Attempt) error {
	return p.publish(ctx, RoutingAttemptCompleted, AttemptCompleted{
		EventType:  RoutingAttemptCompleted,
		OccurredAt: attempt.CompletedAt,
		Attempt:    attempt,
		Percentage: attempt.Percentage(),
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, body any) error {
	if !p.enabled {
		p.log.Entry().WithField("routing_key", routingKey).Debug("event publishing disabled, skipping")
		return nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         raw,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.log.Entry().WithField("routing_key", routingKey).Debug("event published")
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
