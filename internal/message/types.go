package message

import "encoding/json"

// Type is the semantic category a record is rendered as
type Type string

const (
	TypeText                   Type = "text"
	TypeReaction               Type = "reaction"
	TypeImage                  Type = "image"
	TypeSticker                Type = "sticker"
	TypeVideo                  Type = "video"
	TypeAudio                  Type = "audio"
	TypeDocument               Type = "document"
	TypeLocation               Type = "location"
	TypeContactCard            Type = "contact_card"
	TypeOrder                  Type = "order"
	TypePayment                Type = "payment"
	TypeButton                 Type = "button"
	TypeSystem                 Type = "system"
	TypeRequestWelcome         Type = "request_welcome"
	TypeUnsupported            Type = "unsupported"
	TypeInteractive            Type = "interactive"
	TypeAuthenticationTemplate Type = "authentication_template"
	TypeUtilityTemplate        Type = "utility_template"
	TypeMarketingTemplate      Type = "marketing_template"
	TypeTemplate               Type = "template"
	TypeAttachment             Type = "attachment"
)

// Payload is the structured data extracted for one semantic type
type Payload interface {
	Type() Type
}

type Text struct {
	Body string `json:"body"`
}

type Reaction struct {
	Emoji string `json:"emoji"`
}

type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type Sticker struct {
	URL string `json:"url"`
}

type Video struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Audio covers both music files and voice notes
type Audio struct {
	URL       string `json:"url"`
	VoiceNote bool   `json:"voice_note"`
}

type Document struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	Label     string `json:"label"`
	Extension string `json:"extension,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ContactCard struct {
	Name string `json:"name,omitempty"`
}

type Order struct {
	Summary string `json:"summary,omitempty"`
}

type Payment struct {
	Summary string `json:"summary,omitempty"`
}

// Button is a quick-reply button press on a template
type Button struct {
	Text string `json:"text,omitempty"`
}

type System struct {
	Body string `json:"body,omitempty"`
}

// RequestWelcome is the ping sent when a user opens a chat for the first time
type RequestWelcome struct{}

// Unsupported keeps the media locator so the attachment can still be downloaded
type Unsupported struct {
	URL string `json:"url,omitempty"`
}

// InteractiveKind is read from the bracket marker of an interactive reply
type InteractiveKind string

const (
	InteractiveButtonReply  InteractiveKind = "button_reply"
	InteractiveListReply    InteractiveKind = "list_reply"
	InteractiveFlowResponse InteractiveKind = "flow_response"
	InteractiveOther        InteractiveKind = "other"
)

type Interactive struct {
	Kind  InteractiveKind `json:"kind"`
	Title string          `json:"title,omitempty"`
}

type AuthenticationTemplate struct {
	Code            string `json:"code"`
	InstructionText string `json:"instruction_text"`
}

// UtilityTemplate carries the bucket picked from the first matching keyword family
type UtilityTemplate struct {
	Bucket      UtilityBucket `json:"bucket"`
	Label       string        `json:"label"`
	Body        string        `json:"body"`
	OrderRef    string        `json:"order_ref,omitempty"`
	TrackingRef string        `json:"tracking_ref,omitempty"`
}

type MarketingTemplate struct {
	Body          string `json:"body"`
	CouponCode    string `json:"coupon_code,omitempty"`
	IsLimitedTime bool   `json:"is_limited_time"`
	CTAURL        string `json:"cta_url,omitempty"`
}

type Template struct {
	Body string `json:"body"`
}

// Attachment is media that matched no specific rule
type Attachment struct {
	URL       string `json:"url"`
	Extension string `json:"extension,omitempty"`
}

func (Text) Type() Type                   { return TypeText }
func (Reaction) Type() Type               { return TypeReaction }
func (Image) Type() Type                  { return TypeImage }
func (Sticker) Type() Type                { return TypeSticker }
func (Video) Type() Type                  { return TypeVideo }
func (Audio) Type() Type                  { return TypeAudio }
func (Document) Type() Type               { return TypeDocument }
func (Location) Type() Type               { return TypeLocation }
func (ContactCard) Type() Type            { return TypeContactCard }
func (Order) Type() Type                  { return TypeOrder }
func (Payment) Type() Type                { return TypePayment }
func (Button) Type() Type                 { return TypeButton }
func (System) Type() Type                 { return TypeSystem }
func (RequestWelcome) Type() Type         { return TypeRequestWelcome }
func (Unsupported) Type() Type            { return TypeUnsupported }
func (Interactive) Type() Type            { return TypeInteractive }
func (AuthenticationTemplate) Type() Type { return TypeAuthenticationTemplate }
func (UtilityTemplate) Type() Type        { return TypeUtilityTemplate }
func (MarketingTemplate) Type() Type      { return TypeMarketingTemplate }
func (Template) Type() Type               { return TypeTemplate }
func (Attachment) Type() Type             { return TypeAttachment }

// Classified is a record paired with its derived semantic payload.
// It is recomputed on demand and never stored.
type Classified struct {
	Record  Record
	Payload Payload
}

// Type returns the semantic type of the payload
func (c Classified) Type() Type {
	return c.Payload.Type()
}

func (c Classified) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Direction Direction `json:"direction"`
		ContactID string    `json:"contact_id"`
		Status    Status    `json:"status"`
		Timestamp string    `json:"timestamp"`
		Type      Type      `json:"type"`
		Data      Payload   `json:"data"`
	}{
		ID:        c.Record.ID,
		Direction: c.Record.Direction,
		ContactID: c.Record.ContactID,
		Status:    c.Record.Status,
		Timestamp: c.Record.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Type:      c.Type(),
		Data:      c.Payload,
	})
}
