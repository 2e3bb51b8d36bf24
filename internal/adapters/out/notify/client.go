// Package notify maps domain events to outbound messages on the customer and
// courier channels. Delivery rides on AMQP exchanges and is best-effort: a
// broker failure is logged and never propagates back into the mutation that
// emitted the event.
package notify

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchanges the dispatcher publishes into.
const (
	CustomerExchange = "notify.customer"
	CourierExchange  = "notify.courier"
)

// AmqpPublisher is the narrow broker surface the dispatcher needs.
type AmqpPublisher interface {
	Publish(ctx context.Context, exchange string, key string, body []byte) error
}

// Client wraps an AMQP connection and channel. Publish calls are serialized
// with a mutex because amqp channels are not safe for concurrent writes.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
}

// Dial connects to the broker and declares the notification exchanges.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	for _, exchange := range []string{CustomerExchange, CourierExchange} {
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	return &Client{conn: conn, ch: ch}, nil
}

// Publish sends one JSON message to the exchange.
func (c *Client) Publish(ctx context.Context, exchange string, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ch.PublishWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Transient,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close tears down the channel and connection.
func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
