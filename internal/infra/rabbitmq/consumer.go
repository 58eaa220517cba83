package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"checkout-service/internal/domain"

	"github.com/streadway/amqp"
)

var ErrMalformed = errors.New("malformed message")

// HandlerFunc processes the data part of a message envelope.
type HandlerFunc func(ctx context.Context, data json.RawMessage) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	handle  HandlerFunc
}

type inbound struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id,omitempty"`
}

// NewConsumer declares a durable queue bound to routingKey on exchange.
func NewConsumer(amqpURL, exchange, queue, routingKey string, handle HandlerFunc) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		channel.Close()
		conn.Close()
		return nil, err
	}
	if err := declareExchange(channel, exchange); err != nil {
		return fail(err)
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("failed to declare queue: %w", err))
	}
	if err := channel.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fail(fmt.Errorf("failed to bind queue: %w", err))
	}
	if err := channel.Qos(10, 0, false); err != nil {
		return fail(fmt.Errorf("failed to set qos: %w", err))
	}

	return &Consumer{conn: conn, channel: channel, queue: queue, handle: handle}, nil
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	log.Printf("Consuming from queue '%s'", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			dispatch(ctx, d, c.handle)
		}
	}
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// dispatch acks handled deliveries, drops ones that can never succeed and
// requeues the rest.
func dispatch(ctx context.Context, d amqp.Delivery, handle HandlerFunc) {
	var msg inbound
	err := json.Unmarshal(d.Body, &msg)
	if err != nil || len(msg.Data) == 0 {
		err = fmt.Errorf("%w: %v", ErrMalformed, err)
	} else {
		err = handle(ctx, msg.Data)
	}

	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Printf("ack failed: %v", ackErr)
		}
	case retryable(err):
		log.Printf("message %s failed, requeueing: %v", msg.ID, err)
		_ = d.Nack(false, true)
	default:
		log.Printf("message %s rejected: %v", msg.ID, err)
		_ = d.Nack(false, false)
	}
}

func retryable(err error) bool {
	if errors.Is(err, ErrMalformed) {
		return false
	}
	return errors.Is(err, domain.ErrStorage) || !domain.IsClassified(err)
}
