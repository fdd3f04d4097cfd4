package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is used when the configuration leaves the exchange empty.
const DefaultExchange = "pointbook.changes"

// ErrChannelClosed is returned by Consume when the broker closes the delivery channel.
var ErrChannelClosed = errors.New("message channel closed")

// Publisher announces ledger changes.
type Publisher interface {
	Publish(ctx context.Context, msg *ChangeMessage) error
	Close() error
}

// Config holds broker settings.
type Config struct {
	URL      string
	Exchange string
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	return c
}

// amqpChannel is the subset of *amqp091.Channel used by Client.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client broadcasts change messages over a fanout exchange. Every subscriber
// gets its own private queue, so each one sees every change made while it is
// connected and nothing from before.
type Client struct {
	conn         *amqp091.Connection
	channel      amqpChannel
	exchangeName string
}

// NewClient dials the broker and declares the exchange.
func NewClient(cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("notify: broker url is required")
	}
	cfg = cfg.withDefaults()

	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: cfg.Exchange,
	}

	if err := client.setup(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("setup exchange: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Publish broadcasts a change message to every current subscriber.
func (c *Client) Publish(ctx context.Context, msg *ChangeMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		"",             // routing key, ignored by fanout
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "published ledger change",
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID,
		"exchange", c.exchangeName)

	return nil
}

// subscribe declares a server-named queue owned by this connection, binds it
// to the exchange and starts consuming from it. The broker deletes the queue
// when the subscriber goes away.
func (c *Client) subscribe() (string, <-chan amqp091.Delivery, error) {
	queue, err := c.channel.QueueDeclare(
		"",    // name, chosen by the broker
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(queue.Name, "", c.exchangeName, false, nil); err != nil {
		return "", nil, fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		false,      // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return "", nil, fmt.Errorf("start consuming: %w", err)
	}

	return queue.Name, msgs, nil
}

// Consume delivers change messages to handler until ctx is canceled.
// Messages that cannot be decoded or handled are dropped; the next change
// triggers a fresh attempt.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *ChangeMessage) error) error {
	queueName, msgs, err := c.subscribe()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "watching for ledger changes", "exchange", c.exchangeName, "queue", queueName)
	return dispatch(ctx, msgs, handler)
}

// acknowledger is the subset of amqp091.Delivery used by dispatch.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, msgs <-chan amqp091.Delivery, handler func(context.Context, *ChangeMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			handle(ctx, &delivery, delivery.Body, handler)
		}
	}
}

func handle(ctx context.Context, ack acknowledger, body []byte, handler func(context.Context, *ChangeMessage) error) {
	msg, err := ChangeMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode change message", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to handle change message", "error", err, "change", msg.String())
		_ = ack.Nack(false, false)
		return
	}

	_ = ack.Ack(false)
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Nop discards every message. It is used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, *ChangeMessage) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
