package queue

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

type amqpSource interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler processes one message body.
type Handler func(ctx context.Context, body string) error

// AMQPConsumer delivers queue messages to a Handler with manual acks.
type AMQPConsumer struct {
	conn  *amqp.Connection
	src   amqpSource
	queue string
}

// NewAMQPConsumer dials url, declares queue and limits prefetch to prefetch messages.
func NewAMQPConsumer(url, queue string, prefetch int) (*AMQPConsumer, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("amqp qos: %w", err)
		}
	}
	return &AMQPConsumer{conn: conn, src: ch, queue: queue}, nil
}

// Run consumes until ctx is done or the delivery channel closes.
// Failed messages are requeued once, then dropped.
func (c *AMQPConsumer) Run(ctx context.Context, handle Handler) error {
	deliveries, err := c.src.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp delivery channel closed")
			}
			if err := handle(ctx, string(d.Body)); err != nil {
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close releases the connection.
func (c *AMQPConsumer) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
