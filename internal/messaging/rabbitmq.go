// Package messaging announces finalized attempts on RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// CompletedMessage is the body published for each finalized attempt.
type CompletedMessage struct {
	Record          model.HistoryRecord `json:"record"`
	DurationSeconds int                 `json:"duration_seconds"`
	PublishedAt     time.Time           `json:"published_at"`
}

// Publisher sends finalized History Records to a durable queue.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	queue    string
	duration int
	log      zerolog.Logger
}

// Dial connects to RabbitMQ and declares the queue.
func Dial(url, queue string, duration int, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, queue, duration, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string, duration int, log zerolog.Logger) (*Publisher, error) {
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		ch:       ch,
		queue:    queue,
		duration: duration,
		log:      log.With().Str("component", "amqp_publisher").Str("queue", queue).Logger(),
	}, nil
}

// Publish implements session.Sink. Only submitted events are forwarded.
func (p *Publisher) Publish(ev session.Event) {
	if ev.Type != session.EventSubmitted || ev.Record == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := p.PublishCompleted(ctx, *ev.Record); err != nil {
		p.log.Error().Err(err).Str("record_id", ev.Record.ID).Msg("Failed to publish completed attempt")
		return
	}
	p.log.Info().Str("record_id", ev.Record.ID).Str("module_id", ev.Record.ModuleID).Msg("Published completed attempt")
}

// PublishCompleted sends one record as a persistent JSON message.
func (p *Publisher) PublishCompleted(ctx context.Context, rec model.HistoryRecord) error {
	now := time.Now().UTC()
	body, err := json.Marshal(CompletedMessage{
		Record:          rec,
		DurationSeconds: p.duration,
		PublishedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("encode completed message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    rec.ID,
			Timestamp:    now,
			Body:         body,
			Headers: amqp.Table{
				"module_id": rec.ModuleID,
			},
		},
	)
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			p.log.Warn().Err(err).Msg("Error closing RabbitMQ channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
