package queue

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"whatsapp-engine/pkg/logger"
)

// Connection is a RabbitMQ connection that redials when its channel dies
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.Mutex
}

func NewConnection(url string) (*Connection, error) {
	if url == "" {
		return nil, errors.New("queue: rabbitmq url cannot be empty")
	}

	c := &Connection{url: url}
	if err := c.dial(); err != nil {
		return nil, err
	}
	logger.Info().Msg("Connected to RabbitMQ")
	return c, nil
}

func (c *Connection) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("queue: dial rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("queue: open channel: %w", err)
	}
	c.conn = conn
	c.channel = channel
	return nil
}

// Channel returns the live channel, reconnecting if necessary
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.channel.IsClosed() || c.conn == nil || c.conn.IsClosed() {
		logger.Warn().Msg("RabbitMQ channel closed, reconnecting")
		c.closeLocked()
		if err := c.dial(); err != nil {
			return nil, err
		}
		logger.Info().Msg("Reconnected to RabbitMQ")
	}
	return c.channel, nil
}

// DeclareQueue declares a durable, non-exclusive queue
func (c *Connection) DeclareQueue(name string) error {
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %s: %w", name, err)
	}
	return nil
}

func (c *Connection) closeLocked() []error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	return errs
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errs := c.closeLocked(); len(errs) > 0 {
		return fmt.Errorf("queue: close: %w", errors.Join(errs...))
	}
	logger.Info().Msg("RabbitMQ connection closed")
	return nil
}
