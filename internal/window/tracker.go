package window

import (
	"sync"
	"sync/atomic"
	"time"
)

// Key identifies one conversation window
type Key struct {
	ContactID string
	Channel   string
}

// WhatsApp returns the key for a contact's WhatsApp conversation
func WhatsApp(contactID string) Key {
	return Key{ContactID: contactID, Channel: ChannelWhatsApp}
}

// Tracker holds lastInboundAt per key. Updates are an atomic max, so the
// live ingestion path and the periodic refresh can race without a lock and
// an older timestamp never moves a window backward.
type Tracker struct {
	last sync.Map // Key -> *atomic.Int64 (unix nanos, 0 = never)
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records an inbound instant and reports whether it advanced the window
func (t *Tracker) Observe(key Key, at time.Time) bool {
	if at.IsZero() {
		return false
	}
	n := at.UnixNano()
	v, _ := t.last.LoadOrStore(key, new(atomic.Int64))
	slot := v.(*atomic.Int64)
	for {
		cur := slot.Load()
		if n <= cur {
			return false
		}
		if slot.CompareAndSwap(cur, n) {
			return true
		}
	}
}

// LastInbound returns the stored instant, if any
func (t *Tracker) LastInbound(key Key) (time.Time, bool) {
	v, ok := t.last.Load(key)
	if !ok {
		return time.Time{}, false
	}
	n := v.(*atomic.Int64).Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n).UTC(), true
}

// Window returns the current window for key; reads never block
func (t *Tracker) Window(key Key) Window {
	last, _ := t.LastInbound(key)
	return Window{LastInboundAt: last}
}
