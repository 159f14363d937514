package models

// WebhookPayload represents the incoming JSON payload from WhatsApp
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value ChangeValue `json:"value"`
	Field string      `json:"field"`
}

type ChangeValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []WebhookContact `json:"contacts,omitempty"`
	Messages []InboundMessage `json:"messages,omitempty"`
	Statuses []StatusUpdate   `json:"statuses,omitempty"`
}

// WebhookContact carries the sender's profile
type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// InboundMessage is one message of a webhook change
type InboundMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // unix seconds
	Type      string `json:"type"`

	Text        *TextMessage        `json:"text,omitempty"`
	Image       *MediaMessage       `json:"image,omitempty"`
	Video       *MediaMessage       `json:"video,omitempty"`
	Audio       *MediaMessage       `json:"audio,omitempty"`
	Document    *MediaMessage       `json:"document,omitempty"`
	Sticker     *MediaMessage       `json:"sticker,omitempty"`
	Location    *LocationMessage    `json:"location,omitempty"`
	Reaction    *ReactionMessage    `json:"reaction,omitempty"`
	Contacts    []SharedContact     `json:"contacts,omitempty"`
	Button      *ButtonMessage      `json:"button,omitempty"`
	Order       *OrderMessage       `json:"order,omitempty"`
	Payment     *PaymentMessage     `json:"payment,omitempty"`
	System      *SystemMessage      `json:"system,omitempty"`
	Interactive *InteractiveMessage `json:"interactive,omitempty"`
}

// StatusUpdate is a delivery receipt for an outbound message
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientId string `json:"recipient_id"`
}

type TextMessage struct {
	Body string `json:"body"`
}

// MediaMessage represents a media attachment in a WhatsApp message
type MediaMessage struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
}

type LocationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type ReactionMessage struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type SharedContact struct {
	Name struct {
		FormattedName string `json:"formatted_name"`
	} `json:"name"`
}

// ButtonMessage is a quick-reply tap on a template button
type ButtonMessage struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

type OrderMessage struct {
	CatalogID    string        `json:"catalog_id"`
	Text         string        `json:"text,omitempty"`
	ProductItems []ProductItem `json:"product_items"`
}

type ProductItem struct {
	ProductRetailerID string  `json:"product_retailer_id"`
	Quantity          int     `json:"quantity"`
	ItemPrice         float64 `json:"item_price"`
	Currency          string  `json:"currency"`
}

// PaymentMessage is an in-chat payment notification
type PaymentMessage struct {
	ReferenceID string        `json:"reference_id"`
	Status      string        `json:"status"`
	Currency    string        `json:"currency"`
	Amount      PaymentAmount `json:"amount"`
}

// PaymentAmount is a fixed-point value: Value / Offset, e.g. 21000 / 100
type PaymentAmount struct {
	Value  int64 `json:"value"`
	Offset int64 `json:"offset"`
}

type SystemMessage struct {
	Body string `json:"body"`
	Type string `json:"type"`
}

// InteractiveMessage represents an interactive message response (buttons, flows)
type InteractiveMessage struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"` // For button clicks
	ListReply   *ListReply   `json:"list_reply,omitempty"`   // For list selections
	NfmReply    *NfmReply    `json:"nfm_reply,omitempty"`    // For Flows
}

// ButtonReply represents a button click response
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListReply represents a list selection response
type ListReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// NfmReply represents a response from a WhatsApp Flow
type NfmReply struct {
	ResponsePayload string `json:"response_payload"` // JSON string of the form data
	Body            string `json:"body"`
	Name            string `json:"name"`
}
