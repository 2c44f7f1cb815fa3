package output

import (
	"context"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chrisdamba/pupulse/internal/models"
)

// amqpChannel is the part of *amqp.Channel the output uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQOutput publishes persistent messages to a durable topic exchange,
// routed by topic name so consumers can bind to e.g. "order_*_events".
type RabbitMQOutput struct {
	conn     io.Closer
	ch       amqpChannel
	exchange string
	timeout  time.Duration
}

func NewRabbitMQOutput(cfg models.RabbitMQConfig) (*RabbitMQOutput, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	out, err := NewRabbitMQOutputWithChannel(ch, cfg.Exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	out.conn = conn
	return out, nil
}

// NewRabbitMQOutputWithChannel declares the exchange on ch.
func NewRabbitMQOutputWithChannel(ch amqpChannel, exchange string) (*RabbitMQOutput, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitMQOutput{ch: ch, exchange: exchange, timeout: 5 * time.Second}, nil
}

func (r *RabbitMQOutput) WriteMessage(topic string, msg []byte) error {
	ts, err := eventTimestamp(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err = r.ch.PublishWithContext(ctx, r.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		Timestamp:     time.Unix(ts, 0).UTC(),
		CorrelationId: messageKey(msg),
		Body:          msg,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", r.exchange, topic, err)
	}
	return nil
}

func (r *RabbitMQOutput) Close() error {
	err := r.ch.Close()
	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
