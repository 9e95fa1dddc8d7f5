package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ErrDiscard tells the consumer a message can never be processed. It is
// dropped instead of requeued.
var ErrDiscard = errors.New("discard message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
	// Exchange is the topic exchange activity events go to.
	Exchange string
	// StatusQueue receives reservation status changes pushed by the store.
	StatusQueue string
	// StatusRoutingKey binds StatusQueue to Exchange.
	StatusRoutingKey string
}

// DefaultConfig returns the exchange and queue names used by the storefront.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		Exchange:         "storefront",
		StatusQueue:      "storefront.reservation_status",
		StatusRoutingKey: "reservation.status",
	}
}

// NewClient creates a new RabbitMQ client.
// It connects, opens a channel and declares the exchange and status queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithFields(log.Fields{
		"exchange": cfg.Exchange,
		"queue":    cfg.StatusQueue,
	}).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	if cfg.StatusQueue == "" {
		return nil
	}
	_, err = ch.QueueDeclare(
		cfg.StatusQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.StatusQueue, err)
	}
	if err := ch.QueueBind(cfg.StatusQueue, cfg.StatusRoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.StatusQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a JSON body to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	log.WithFields(log.Fields{"exchange": exchange, "routing_key": routingKey}).Debug("published event")
	return nil
}

// ConsumeReservationStatus starts a goroutine that feeds the status queue to
// handler. A nil return acks the message; ErrDiscard drops it; any other
// error requeues it.
func (c *Client) ConsumeReservationStatus(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.cfg.StatusQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.WithField("queue", c.cfg.StatusQueue).Info("waiting for reservation status events")

	go func() {
		for msg := range msgs {
			settle(msg, handler(msg))
		}
		log.WithField("queue", c.cfg.StatusQueue).Info("reservation status consumer stopped")
	}()

	return nil
}

func settle(msg amqp.Delivery, err error) {
	entry := log.WithField("delivery_tag", msg.DeliveryTag)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			entry.WithError(ackErr).Warn("error acking message")
		}
	case errors.Is(err, ErrDiscard):
		entry.WithError(err).Warn("dropping unprocessable message")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			entry.WithError(nackErr).Warn("error nacking message")
		}
	default:
		entry.WithError(err).Warn("error processing message, requeueing")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			entry.WithError(nackErr).Warn("error nacking message")
		}
	}
}
