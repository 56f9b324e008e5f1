package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"
)

type amqpPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPClient publishes messages to a durable RabbitMQ queue on the default exchange.
type AMQPClient struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    amqpPublisher
	queue string
}

// NewAMQPClient dials url and declares queue.
func NewAMQPClient(url, queue string) (*AMQPClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &AMQPClient{conn: conn, ch: ch, queue: queue}, nil
}

func dialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return conn, ch, nil
}

// Send publishes msg as a persistent JSON message.
func (c *AMQPClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.ch.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: msg.RequestID,
		Body:          payload,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close releases the connection.
func (c *AMQPClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

var _ Client = (*AMQPClient)(nil)
