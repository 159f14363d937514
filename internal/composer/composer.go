// Package composer gates outbound sends on the conversation window. Free-form
// text needs an open window; approved templates can always be sent.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/template"
	"whatsapp-engine/internal/window"
	"whatsapp-engine/pkg/logger"
)

var (
	ErrWindowClosed    = errors.New("composer: conversation window closed, send an approved template")
	ErrEmptyMessage    = errors.New("composer: message body is empty")
	ErrNoRecipient     = errors.New("composer: recipient is empty")
	ErrTemplateNotSent = errors.New("composer: template is not approved")
	ErrDeliveryFailed  = errors.New("composer: delivery failed")
)

// Outbound is one send handed to a Delivery
type Outbound struct {
	ID       string
	To       string
	Body     string
	Template *template.Binding
}

// Delivery hands a send to the provider. An empty wamid with a nil error
// means the send was accepted for later delivery.
type Delivery interface {
	Deliver(ctx context.Context, o Outbound) (wamid string, err error)
}

// Store persists outbound records across their lifecycle
type Store interface {
	Save(ctx context.Context, r message.Record) error
	Confirm(ctx context.Context, localID, wamid string) error
	UpdateStatus(ctx context.Context, id string, next message.Status) (bool, error)
}

type Composer struct {
	tracker  *window.Tracker
	delivery Delivery
	store    Store
	newID    func() string
}

func New(tracker *window.Tracker, delivery Delivery, store Store) *Composer {
	return &Composer{
		tracker:  tracker,
		delivery: delivery,
		store:    store,
		newID:    uuid.NewString,
	}
}

func (c *Composer) Window(contactID string, now time.Time) window.Snapshot {
	return c.tracker.Window(window.WhatsApp(contactID)).Snapshot(now)
}

func (c *Composer) Capabilities(contactID string, now time.Time) window.Capabilities {
	return c.tracker.Window(window.WhatsApp(contactID)).Capabilities(now)
}

// SendText sends free-form text inside an open window
func (c *Composer) SendText(ctx context.Context, contactID, body string, now time.Time) (message.Record, error) {
	if contactID == "" {
		return message.Record{}, ErrNoRecipient
	}
	if strings.TrimSpace(body) == "" {
		return message.Record{}, ErrEmptyMessage
	}
	if !c.Capabilities(contactID, now).FreeForm {
		return message.Record{}, ErrWindowClosed
	}

	r := c.newRecord(contactID, string(message.TypeText), body, now)
	return c.deliver(ctx, r, Outbound{ID: r.ID, To: contactID, Body: body})
}

// SendTemplate extracts the slots of def, binds the input to them and sends
// the result. Templates are allowed whatever the window state.
func (c *Composer) SendTemplate(ctx context.Context, contactID string, def template.Definition, in template.Input, now time.Time) (message.Record, template.Binding, error) {
	if contactID == "" {
		return message.Record{}, template.Binding{}, ErrNoRecipient
	}
	if def.Status != "" && !def.IsApproved() {
		return message.Record{}, template.Binding{}, fmt.Errorf("%w: %s is %s", ErrTemplateNotSent, def.Name, def.Status)
	}
	b, err := template.Bind(def, in.SlotsFor(def))
	if err != nil {
		return message.Record{}, template.Binding{}, err
	}

	r := c.newRecord(contactID, string(message.TypeTemplate), b.Preview, now)
	r, err = c.deliver(ctx, r, Outbound{ID: r.ID, To: contactID, Template: &b})
	return r, b, err
}

func (c *Composer) newRecord(contactID, declared, content string, now time.Time) message.Record {
	return message.Record{
		ID:           c.newID(),
		Direction:    message.Outbound,
		ContactID:    contactID,
		DeclaredType: declared,
		Content:      content,
		Timestamp:    now.UTC(),
		Status:       message.StatusPending,
	}
}

// deliver stores r as pending, hands it off, then settles its status
func (c *Composer) deliver(ctx context.Context, r message.Record, o Outbound) (message.Record, error) {
	if err := c.store.Save(ctx, r); err != nil {
		return message.Record{}, err
	}

	wamid, err := c.delivery.Deliver(ctx, o)
	if err != nil {
		if _, uerr := c.store.UpdateStatus(ctx, r.ID, message.StatusFailed); uerr != nil {
			logger.Error().Err(uerr).Str("id", r.ID).Msg("Failed to mark message failed")
		}
		r.Status = message.StatusFailed
		return r, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if wamid == "" {
		return r, nil
	}

	if err := c.store.Confirm(ctx, r.ID, wamid); err != nil {
		return r, err
	}
	r.ID = wamid
	r.Status = message.StatusSent
	return r, nil
}
