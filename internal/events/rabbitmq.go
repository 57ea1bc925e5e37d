package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the fanout exchange order events go to.
const Exchange = "orders_fanout"

const dialAttempts = 5

type amqpChannel interface {
	IsClosed() bool
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type amqpConn interface {
	IsClosed() bool
	channel() (amqpChannel, error)
	Close() error
}

type dialedConn struct{ *amqp091.Connection }

func (c dialedConn) channel() (amqpChannel, error) {
	ch, err := c.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (amqpConn, error) {
	c, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	return dialedConn{c}, nil
}

// RabbitMQ publishes events to a durable fanout exchange.
type RabbitMQ struct {
	url  string
	dial func(url string) (amqpConn, error)

	mu   sync.Mutex
	conn amqpConn
	ch   amqpChannel
}

// DialRabbitMQ connects with a few retries and declares the exchange. It
// gives up early when ctx is done.
func DialRabbitMQ(ctx context.Context, url string) (*RabbitMQ, error) {
	return dialRabbitMQ(ctx, url, dialAMQP)
}

func dialRabbitMQ(ctx context.Context, url string, dial func(string) (amqpConn, error)) (*RabbitMQ, error) {
	r := &RabbitMQ{url: url, dial: dial}
	var err error
	for i := 0; i < dialAttempts; i++ {
		if err = r.connect(); err == nil {
			return r, nil
		}
		if i < dialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			slog.Warn("rabbitmq connect failed", "attempt", i+1, "retry_in", wait, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("rabbitmq connect: %w", err)
}

func (r *RabbitMQ) connect() error {
	conn, err := r.dial(r.url)
	if err != nil {
		return err
	}
	r.conn = conn
	if err := r.openChannel(); err != nil {
		_ = conn.Close()
		r.conn = nil
		return err
	}
	return nil
}

// openChannel opens a channel on the current connection and declares the
// exchange on it.
func (r *RabbitMQ) openChannel() error {
	ch, err := r.conn.channel()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(
		Exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare %s: %w", Exchange, err)
	}
	r.ch = ch
	return nil
}

// ready restores the connection or, when only the channel was closed by the
// broker, the channel. Callers hold r.mu.
func (r *RabbitMQ) ready() error {
	if r.conn == nil || r.conn.IsClosed() {
		if err := r.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
		return nil
	}
	if r.ch == nil || r.ch.IsClosed() {
		if err := r.openChannel(); err != nil {
			return fmt.Errorf("reopen channel: %w", err)
		}
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ready(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.ch.PublishWithContext(ctx,
		Exchange,
		e.Type, // routing key, ignored by fanout but useful to consumers
		false,  // mandatory
		false,  // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    e.OrderID,
			Type:         e.Type,
			Timestamp:    e.At,
			Body:         body,
		})
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
