package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultExchange is the topic exchange lifecycle events are forwarded to.
const DefaultExchange = "subscriptions.lifecycle"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder republishes bus events to a durable RabbitMQ topic exchange,
// routed by event name.
type AMQPForwarder struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewAMQPForwarder connects to RabbitMQ and declares the exchange
func NewAMQPForwarder(url, exchange string, logger *zap.Logger) (*AMQPForwarder, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("RabbitMQ forwarder connected", zap.String("exchange", exchange))

	f := newAMQPForwarder(ch, exchange, logger)
	f.conn = conn
	return f, nil
}

func newAMQPForwarder(ch amqpChannel, exchange string, logger *zap.Logger) *AMQPForwarder {
	return &AMQPForwarder{channel: ch, exchange: exchange, logger: logger}
}

// Handle publishes the event as a JSON envelope. Register it with
// Bus.Subscribe(AllEvents, forwarder.Handle).
func (f *AMQPForwarder) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Name, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.channel.PublishWithContext(ctx,
		f.exchange, // exchange
		event.Name, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Type:         event.Name,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Name, err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event", event.Name),
		zap.String("event_id", event.ID),
		zap.Int("size", len(body)),
	)
	return nil
}

// Close closes the channel and connection.
func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.channel.Close(); err != nil {
		f.logger.Warn("error closing channel", zap.Error(err))
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
