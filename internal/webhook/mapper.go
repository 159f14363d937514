package webhook

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/pkg/models"
)

// mimeExtensions covers the media types the Cloud API delivers
var mimeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/3gpp":      "3gp",
	"audio/aac":       "aac",
	"audio/amr":       "amr",
	"audio/mpeg":      "mp3",
	"audio/mp4":       "m4a",
	"audio/ogg":       "ogg",
	"audio/opus":      "opus",
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"text/csv":        "csv",

	"application/msword":            "doc",
	"application/vnd.ms-excel":      "xls",
	"application/vnd.ms-powerpoint": "ppt",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// MediaLocator is the local path that proxies a provider media id
func MediaLocator(mediaID, filename string) string {
	return "/api/media/" + url.PathEscape(mediaID) + "/" + url.PathEscape(filename)
}

// ExtensionFor derives a bare lowercase extension from a filename, then
// from the MIME type.
func ExtensionFor(filename, mimeType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), "."); ext != "" {
		return ext
	}
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	return mimeExtensions[mt]
}

// ParseTimestamp converts the provider's unix-seconds string
func ParseTimestamp(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("webhook: bad timestamp %q: %w", s, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// ToRecord flattens an inbound webhook message into a record the
// classifier understands. Structured payloads become bracket markers.
func ToRecord(m models.InboundMessage, at time.Time) message.Record {
	r := message.Record{
		ID:           m.ID,
		Direction:    message.Inbound,
		ContactID:    m.From,
		DeclaredType: m.Type,
		Timestamp:    at,
		Status:       message.StatusReceived,
	}

	switch m.Type {
	case "text":
		if m.Text != nil {
			r.Content = m.Text.Body
		}
	case "image", "video", "audio", "sticker", "document":
		media := mediaOf(m)
		if media == nil {
			r.Content = "[Unsupported]"
			r.DeclaredType = "unsupported"
			break
		}
		ext := ExtensionFor(media.Filename, media.MimeType)
		name := media.Filename
		if name == "" {
			name = media.ID
			if ext != "" {
				name += "." + ext
			}
		}
		r.Content = media.Caption
		r.Media = &message.MediaRef{URL: MediaLocator(media.ID, name), FileExtension: ext}
	case "reaction":
		if m.Reaction != nil {
			r.Content = m.Reaction.Emoji
		}
	case "location":
		if m.Location != nil {
			r.Content = fmt.Sprintf("[Location: %s, %s]",
				strconv.FormatFloat(m.Location.Latitude, 'f', -1, 64),
				strconv.FormatFloat(m.Location.Longitude, 'f', -1, 64))
			if label := strings.TrimSpace(m.Location.Name + " " + m.Location.Address); label != "" {
				r.Content += " " + label
			}
		}
	case "contacts":
		name := ""
		if len(m.Contacts) > 0 {
			name = m.Contacts[0].Name.FormattedName
		}
		r.Content = marker("Contact", name)
	case "button":
		if m.Button != nil {
			r.Content = marker("Button", m.Button.Text)
		}
	case "order":
		n := 0
		if m.Order != nil {
			for _, item := range m.Order.ProductItems {
				n += max(item.Quantity, 1)
			}
		}
		r.Content = marker("Order", fmt.Sprintf("%d items", n))
	case "payment":
		r.Content = paymentMarker(m.Payment)
	case "system":
		if m.System != nil {
			r.Content = marker("System", m.System.Body)
		}
	case "interactive":
		r.Content = interactiveMarker(m.Interactive)
	case "request_welcome":
	default:
		r.DeclaredType = "unsupported"
		r.Content = "[Unsupported]"
	}
	return r
}

func marker(kind, text string) string {
	if text == "" {
		return "[" + kind + "]"
	}
	return "[" + kind + ": " + text + "]"
}

func paymentMarker(p *models.PaymentMessage) string {
	if p == nil {
		return "[Payment]"
	}
	amount := float64(p.Amount.Value)
	if p.Amount.Offset > 0 {
		amount /= float64(p.Amount.Offset)
	}
	return marker("Payment", strings.TrimSpace(fmt.Sprintf("%s %s %s",
		p.Currency, strconv.FormatFloat(amount, 'f', -1, 64), p.Status)))
}

func interactiveMarker(in *models.InteractiveMessage) string {
	if in == nil {
		return "[Unsupported]"
	}
	switch {
	case in.ButtonReply != nil:
		return marker("Button Reply", in.ButtonReply.Title)
	case in.ListReply != nil:
		return marker("List Reply", in.ListReply.Title)
	case in.NfmReply != nil:
		name := in.NfmReply.Name
		if name == "" {
			name = "flow"
		}
		return marker("Flow Response", name)
	}
	return marker("Unsupported", in.Type)
}

func mediaOf(m models.InboundMessage) *models.MediaMessage {
	switch m.Type {
	case "image":
		return m.Image
	case "video":
		return m.Video
	case "audio":
		return m.Audio
	case "sticker":
		return m.Sticker
	case "document":
		return m.Document
	}
	return nil
}

// ToStatus maps a receipt status onto the message lifecycle
func ToStatus(s string) (message.Status, bool) {
	switch strings.ToLower(s) {
	case "sent":
		return message.StatusSent, true
	case "delivered":
		return message.StatusDelivered, true
	case "read":
		return message.StatusRead, true
	case "failed":
		return message.StatusFailed, true
	}
	return "", false
}
