package queue

import (
	"context"
	"fmt"

	"whatsapp-engine/internal/composer"
	"whatsapp-engine/internal/message"
	"whatsapp-engine/pkg/logger"
)

// Recorder updates the stored outbound message once a job settles
type Recorder interface {
	Confirm(ctx context.Context, localID, wamid string) error
	UpdateStatus(ctx context.Context, id string, next message.Status) (bool, error)
}

// Worker turns queued jobs into provider sends
type Worker struct {
	delivery composer.Direct
	recorder Recorder
}

func NewWorker(sender composer.Sender, recorder Recorder) *Worker {
	return &Worker{delivery: composer.Direct{Sender: sender}, recorder: recorder}
}

// Handle sends one job. A provider failure marks the message failed and
// is returned so the consumer can requeue it once.
func (w *Worker) Handle(ctx context.Context, job DeliveryJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	o := composer.Outbound{ID: job.JobID, To: job.To, Body: job.Body}
	if job.Kind == KindTemplate {
		o.Template = job.Template
	}

	wamid, err := w.delivery.Deliver(ctx, o)
	if err != nil {
		if _, uerr := w.recorder.UpdateStatus(ctx, job.JobID, message.StatusFailed); uerr != nil {
			logger.Error().Err(uerr).Str("job_id", job.JobID).Msg("Failed to mark message failed")
		}
		return fmt.Errorf("queue: deliver %s: %w", job.JobID, err)
	}

	if err := w.recorder.Confirm(ctx, job.JobID, wamid); err != nil {
		return err
	}
	logger.Debug().Str("job_id", job.JobID).Str("wamid", wamid).Str("kind", string(job.Kind)).Msg("Queued message delivered")
	return nil
}
