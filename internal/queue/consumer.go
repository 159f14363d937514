package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"whatsapp-engine/pkg/logger"
)

// Handler processes one delivery job
type Handler func(ctx context.Context, job DeliveryJob) error

// Consumer drains the delivery queue one job at a time
type Consumer struct {
	conn      *Connection
	queueName string
	handler   Handler
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
}

func NewConsumer(conn *Connection, queueName string, handler Handler) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("queue: connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue: queue name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("queue: handler cannot be nil")
	}
	if err := conn.DeclareQueue(queueName); err != nil {
		return nil, err
	}
	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		done:      make(chan struct{}),
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("queue: set qos: %w", err)
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume %s: %w", c.queueName, err)
	}

	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		defer close(c.done)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Warn().Str("queue", c.queueName).Msg("Delivery channel closed")
					return
				}
				c.process(ctx, d)
			}
		}
	}()

	logger.Info().Str("queue", c.queueName).Msg("Delivery consumer started")
	return nil
}

// process acks on success, requeues a first failure and drops a repeated one
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handle(ctx, d.Body)
	switch {
	case err == nil:
		d.Ack(false)
	case errors.Is(err, ErrInvalidJob):
		logger.Error().Err(err).Msg("Dropping malformed delivery job")
		d.Reject(false)
	case d.Redelivered:
		logger.Error().Err(err).Str("job_id", d.MessageId).Msg("Delivery job failed twice, dropping")
		d.Nack(false, false)
	default:
		logger.Warn().Err(err).Str("job_id", d.MessageId).Msg("Delivery job failed, requeueing")
		d.Nack(false, true)
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	job, err := decodeJob(body)
	if err != nil {
		return err
	}
	return c.handler(ctx, job)
}

func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			close(c.done)
			return
		}
		c.cancel()
	})
	<-c.done
	logger.Info().Str("queue", c.queueName).Msg("Delivery consumer stopped")
}
