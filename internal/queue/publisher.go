package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"whatsapp-engine/internal/composer"
)

// Publisher enqueues outbound sends instead of calling the Graph API.
// It satisfies composer.Delivery.
type Publisher struct {
	conn      *Connection
	queueName string
	now       func() time.Time
}

func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("queue: connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue: queue name cannot be empty")
	}
	if err := conn.DeclareQueue(queueName); err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, queueName: queueName, now: time.Now}, nil
}

func (p *Publisher) Publish(ctx context.Context, job DeliveryJob) error {
	body, err := encodeJob(job)
	if err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    job.JobID,
		Timestamp:    job.EnqueuedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("queue: publish %s: %w", job.JobID, err)
	}
	return nil
}

// Deliver enqueues an outbound send under its local message id. The
// empty wamid leaves the message pending until a worker confirms it.
func (p *Publisher) Deliver(ctx context.Context, o composer.Outbound) (string, error) {
	job := DeliveryJob{
		JobID:      o.ID,
		Kind:       KindText,
		To:         o.To,
		Body:       o.Body,
		EnqueuedAt: p.now().UTC(),
	}
	if o.Template != nil {
		job.Kind = KindTemplate
		job.Template = o.Template
		job.Body = ""
	}
	return "", p.Publish(ctx, job)
}
