// Package window computes the customer service window that decides whether
// free-form replies are allowed or only approved templates may be sent.
package window

import (
	"fmt"
	"time"
)

// Duration of the service window opened by an inbound message
const Duration = 24 * time.Hour

// ChannelWhatsApp is the only channel with a service window today
const ChannelWhatsApp = "whatsapp"

// State of a conversation window
type State string

const (
	Open   State = "OPEN"
	Closed State = "CLOSED"
)

// Window is a pure function of the last inbound instant and the clock.
// A zero LastInboundAt means the contact never wrote in.
type Window struct {
	LastInboundAt time.Time
}

// ExpiresAt returns when the window closes, or zero if it never opened
func (w Window) ExpiresAt() time.Time {
	if w.LastInboundAt.IsZero() {
		return time.Time{}
	}
	return w.LastInboundAt.Add(Duration)
}

// IsOpen uses a strict comparison: at exactly LastInboundAt+24h it is closed
func (w Window) IsOpen(now time.Time) bool {
	if w.LastInboundAt.IsZero() {
		return false
	}
	return now.Before(w.ExpiresAt())
}

// Remaining is never negative
func (w Window) Remaining(now time.Time) time.Duration {
	if !w.IsOpen(now) {
		return 0
	}
	return w.ExpiresAt().Sub(now)
}

func (w Window) State(now time.Time) State {
	if w.IsOpen(now) {
		return Open
	}
	return Closed
}

// Capabilities is what the composer may offer for a conversation
type Capabilities struct {
	FreeForm     bool `json:"free_form"`
	TemplateOnly bool `json:"template_only"`
}

func (w Window) Capabilities(now time.Time) Capabilities {
	open := w.IsOpen(now)
	return Capabilities{FreeForm: open, TemplateOnly: !open}
}

// Snapshot is the display form of a window at one instant
type Snapshot struct {
	State            State        `json:"state"`
	IsOpen           bool         `json:"is_open"`
	LastInboundAt    *time.Time   `json:"last_inbound_at,omitempty"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	RemainingLabel   string       `json:"remaining_label"`
	Capabilities     Capabilities `json:"capabilities"`
}

func (w Window) Snapshot(now time.Time) Snapshot {
	remaining := w.Remaining(now)
	s := Snapshot{
		State:            w.State(now),
		IsOpen:           w.IsOpen(now),
		RemainingSeconds: int64(remaining / time.Second),
		RemainingLabel:   FormatRemaining(remaining),
		Capabilities:     w.Capabilities(now),
	}
	if !w.LastInboundAt.IsZero() {
		last := w.LastInboundAt.UTC()
		exp := w.ExpiresAt().UTC()
		s.LastInboundAt = &last
		s.ExpiresAt = &exp
	}
	return s
}

// FormatRemaining rounds down to whole minutes, switching to hours and
// minutes above one hour. It is for display only.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	minutes := int64(d / time.Minute)
	if minutes < 1 {
		return "<1m"
	}
	if minutes <= 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
