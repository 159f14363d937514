package message

import (
	"path"
	"strings"
	"time"
)

// Direction tells whether a message was received from or sent to a contact
type Direction string

const (
	Inbound  Direction = "INBOUND"
	Outbound Direction = "OUTBOUND"
)

// Status is the delivery state of a message
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
	StatusReceived  Status = "received"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Advances reports whether moving from s to next is a forward transition.
// Failed is terminal and reachable from any non-read state.
func (s Status) Advances(next Status) bool {
	if s == next || s == StatusFailed || s == StatusReceived {
		return false
	}
	if next == StatusFailed {
		return s != StatusRead
	}
	cur, ok := statusRank[s]
	if !ok {
		return true
	}
	nxt, ok := statusRank[next]
	return ok && nxt > cur
}

// MediaRef locates an attachment
type MediaRef struct {
	URL           string `json:"url"`
	FileExtension string `json:"file_extension,omitempty"`
}

// Extension returns the normalized extension, falling back to the URL path
func (m *MediaRef) Extension() string {
	if m == nil {
		return ""
	}
	ext := m.FileExtension
	if ext == "" {
		p := m.URL
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
		ext = path.Ext(p)
	}
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// FileName returns the last path segment of the locator
func (m *MediaRef) FileName() string {
	if m == nil {
		return ""
	}
	p := m.URL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// Record is one message as supplied by the ingestion or delivery path.
// Records are never mutated after creation.
type Record struct {
	ID           string    `json:"id"`
	Direction    Direction `json:"direction"`
	ContactID    string    `json:"contact_id"`
	DeclaredType string    `json:"declared_type,omitempty"`
	Content      string    `json:"content"`
	Media        *MediaRef `json:"media,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
}

// HasMedia reports whether the record carries an attachment, known by its
// locator or by its file extension alone
func (r Record) HasMedia() bool {
	return r.Media != nil && (strings.TrimSpace(r.Media.URL) != "" || r.Media.Extension() != "")
}
