package webhook

import (
	"context"
	"errors"
	"time"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/window"
	"whatsapp-engine/pkg/logger"
	"whatsapp-engine/pkg/models"
)

// MessageSink persists inbound records and applies receipts
type MessageSink interface {
	Save(ctx context.Context, r message.Record) error
	UpdateStatus(ctx context.Context, id string, next message.Status) (bool, error)
}

// ContactSink keeps the contact directory in step with inbound traffic
type ContactSink interface {
	Ensure(ctx context.Context, waID, profileName string) error
	TouchLastInbound(ctx context.Context, waID string, at time.Time) (bool, error)
}

// Notifier pushes live updates to connected dashboards
type Notifier interface {
	NotifyMessage(msg message.Classified, snapshot window.Snapshot)
	NotifyStatus(id string, status message.Status, at time.Time)
	NotifyWindow(contactID string, snapshot window.Snapshot)
}

// Result summarizes one webhook delivery
type Result struct {
	Messages int
	Statuses int
	Skipped  int
}

// Ingestor turns webhook payloads into stored, classified records and
// advances the conversation windows they open.
type Ingestor struct {
	messages MessageSink
	contacts ContactSink
	tracker  *window.Tracker
	notifier Notifier
	now      func() time.Time
}

func NewIngestor(messages MessageSink, contacts ContactSink, tracker *window.Tracker, notifier Notifier) *Ingestor {
	return &Ingestor{
		messages: messages,
		contacts: contacts,
		tracker:  tracker,
		notifier: notifier,
		now:      time.Now,
	}
}

// Ingest processes every message and status of the payload. A failure on
// one item is logged and does not stop the rest; the joined errors are
// returned.
func (i *Ingestor) Ingest(ctx context.Context, payload models.WebhookPayload) (Result, error) {
	var (
		res  Result
		errs []error
	)
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			names := profileNames(change.Value.Contacts)
			for _, m := range change.Value.Messages {
				if err := i.ingestMessage(ctx, m, names[m.From]); err != nil {
					logger.Error().Err(err).Str("wamid", m.ID).Str("from", m.From).Msg("Failed to ingest message")
					errs = append(errs, err)
					res.Skipped++
					continue
				}
				res.Messages++
			}
			for _, s := range change.Value.Statuses {
				applied, err := i.ingestStatus(ctx, s)
				if err != nil {
					logger.Error().Err(err).Str("wamid", s.ID).Msg("Failed to apply status")
					errs = append(errs, err)
				}
				if applied {
					res.Statuses++
				}
			}
		}
	}
	return res, errors.Join(errs...)
}

func (i *Ingestor) ingestMessage(ctx context.Context, m models.InboundMessage, profileName string) error {
	at, err := ParseTimestamp(m.Timestamp)
	if err != nil {
		logger.Warn().Err(err).Str("wamid", m.ID).Msg("Using receipt time for message")
		at = i.now().UTC()
	}
	r := ToRecord(m, at)

	if err := i.contacts.Ensure(ctx, r.ContactID, profileName); err != nil {
		return err
	}
	if err := i.messages.Save(ctx, r); err != nil {
		return err
	}

	key := window.WhatsApp(r.ContactID)
	advanced := i.tracker.Observe(key, at)
	if _, err := i.contacts.TouchLastInbound(ctx, r.ContactID, at); err != nil {
		return err
	}

	classified := message.Classify(r)
	logger.Info().
		Str("wamid", r.ID).
		Str("from", r.ContactID).
		Str("type", string(classified.Type())).
		Msg("Inbound message received")

	if i.notifier != nil {
		snapshot := i.tracker.Window(key).Snapshot(i.now())
		i.notifier.NotifyMessage(classified, snapshot)
		if advanced {
			i.notifier.NotifyWindow(r.ContactID, snapshot)
		}
	}
	return nil
}

func (i *Ingestor) ingestStatus(ctx context.Context, s models.StatusUpdate) (bool, error) {
	next, ok := ToStatus(s.Status)
	if !ok {
		logger.Debug().Str("status", s.Status).Msg("Ignoring unknown receipt status")
		return false, nil
	}
	applied, err := i.messages.UpdateStatus(ctx, s.ID, next)
	if err != nil || !applied {
		return false, err
	}
	if i.notifier != nil {
		at, perr := ParseTimestamp(s.Timestamp)
		if perr != nil {
			at = i.now()
		}
		i.notifier.NotifyStatus(s.ID, next, at)
	}
	return true, nil
}

func profileNames(contacts []models.WebhookContact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.WaID] = c.Profile.Name
	}
	return names
}
