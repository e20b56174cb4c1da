package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	dialTimeout    = 5 * time.Second
	redialBackoff  = 10 * time.Second
)

var (
	// ErrPublisherClosed is returned by Publish after Close
	ErrPublisherClosed = errors.New("publisher is closed")
	// ErrBrokerUnavailable is returned while waiting out the backoff after a failed redial
	ErrBrokerUnavailable = errors.New("message broker unavailable")
)

// Publisher delivers ledger events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event *LedgerEvent) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange using the event name as routing key.
// When the broker closes the channel the publisher drops it and redials on the next
// Publish, at most once per redialBackoff.
type AMQPPublisher struct {
	mu           sync.Mutex
	url          string
	exchangeName string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	closed       bool
	retryAt      time.Time

	dial func(url string) (*amqp091.Connection, error)
	now  func() time.Time
}

func dialBroker(url string) (*amqp091.Connection, error) {
	return amqp091.DialConfig(url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchangeName string) (*AMQPPublisher, error) {
	publisher := &AMQPPublisher{
		url:          url,
		exchangeName: exchangeName,
		dial:         dialBroker,
		now:          time.Now,
	}

	if err := publisher.connect(); err != nil {
		return nil, err
	}
	return publisher, nil
}

// connect opens a connection and channel and declares the exchange. Callers hold mu,
// except the constructor which owns the publisher.
func (p *AMQPPublisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel

	closed := channel.NotifyClose(make(chan *amqp091.Error, 1))
	go p.watch(channel, closed)
	return nil
}

// watch drops the channel once the broker closes it
func (p *AMQPPublisher) watch(channel *amqp091.Channel, closed <-chan *amqp091.Error) {
	reason := <-closed

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != channel {
		return
	}

	slog.Warn("AMQP channel closed, will redial on next publish",
		"exchange", p.exchangeName,
		"reason", reason)
	p.dropLocked()
}

func (p *AMQPPublisher) dropLocked() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
	p.channel = nil
}

// ensureChannelLocked redials when the previous channel was lost
func (p *AMQPPublisher) ensureChannelLocked() error {
	if p.channel != nil {
		return nil
	}
	if p.now().Before(p.retryAt) {
		return ErrBrokerUnavailable
	}

	if err := p.connect(); err != nil {
		p.retryAt = p.now().Add(redialBackoff)
		return fmt.Errorf("reconnect: %w", err)
	}
	slog.Info("AMQP publisher reconnected", "exchange", p.exchangeName)
	return nil
}

// Publish sends one event as a persistent JSON message
func (p *AMQPPublisher) Publish(ctx context.Context, event *LedgerEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}
	if err := p.ensureChannelLocked(); err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		event.Event,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			Timestamp:     event.OccurredAt,
			CorrelationId: event.TraceID,
			Body:          body,
		},
	)
	if err != nil {
		if errors.Is(err, amqp091.ErrClosed) {
			p.dropLocked()
		}
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published ledger event",
		"event", event.Event,
		"transaction_id", event.TransactionID,
		"exchange", p.exchangeName)

	return nil
}

// Close closes the channel and the connection. Later publishes fail with ErrPublisherClosed.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	conn, channel := p.conn, p.channel
	p.conn, p.channel = nil, nil

	if channel != nil {
		channel.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *LedgerEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

// NewPublisher returns an AMQP publisher when url is set, otherwise a NopPublisher
func NewPublisher(url, exchangeName string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, exchangeName)
}
