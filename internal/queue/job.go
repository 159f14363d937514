package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"whatsapp-engine/internal/template"
)

type JobKind string

const (
	KindText     JobKind = "text"
	KindTemplate JobKind = "template"
)

var ErrInvalidJob = errors.New("queue: invalid delivery job")

// DeliveryJob is one outbound send waiting for a worker. JobID doubles as
// the local message id until the provider assigns a wamid.
type DeliveryJob struct {
	JobID      string            `json:"job_id"`
	Kind       JobKind           `json:"kind"`
	To         string            `json:"to"`
	Body       string            `json:"body,omitempty"`
	Template   *template.Binding `json:"template,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

func (j DeliveryJob) Validate() error {
	if j.JobID == "" || j.To == "" {
		return fmt.Errorf("%w: missing job id or recipient", ErrInvalidJob)
	}
	switch j.Kind {
	case KindText:
		if j.Body == "" {
			return fmt.Errorf("%w: empty text body", ErrInvalidJob)
		}
	case KindTemplate:
		if j.Template == nil || j.Template.Name == "" {
			return fmt.Errorf("%w: missing template binding", ErrInvalidJob)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, j.Kind)
	}
	return nil
}

func encodeJob(j DeliveryJob) ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job: %w", err)
	}
	return body, nil
}

func decodeJob(body []byte) (DeliveryJob, error) {
	var j DeliveryJob
	if err := json.Unmarshal(body, &j); err != nil {
		return DeliveryJob{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if err := j.Validate(); err != nil {
		return DeliveryJob{}, err
	}
	return j, nil
}
