package message

import (
	"regexp"
	"strings"
)

// Input is the normalized view of a record that rules match against
type Input struct {
	Record    Record
	Declared  string
	Content   string
	Extension string
}

// NewInput normalizes the declared type, content and file extension of a record
func NewInput(r Record) Input {
	return Input{
		Record:    r,
		Declared:  strings.ToLower(strings.TrimSpace(r.DeclaredType)),
		Content:   strings.TrimSpace(r.Content),
		Extension: r.Media.Extension(),
	}
}

func (in Input) mediaURL() string {
	if in.Record.Media == nil {
		return ""
	}
	return in.Record.Media.URL
}

// Rule is one predicate and extractor pair in the classification table
type Rule struct {
	Name    string
	Match   func(Input) bool
	Extract func(Input) Payload
}

// Classifier evaluates its rules top to bottom; the first match wins
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns a copy of the rule table in evaluation order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify assigns exactly one semantic type to the record. It never fails:
// a record no rule claims ends up as an attachment or plain text.
func (c *Classifier) Classify(r Record) Classified {
	in := NewInput(r)
	for _, rule := range c.rules {
		if !rule.Match(in) {
			continue
		}
		if p := rule.Extract(in); p != nil {
			return Classified{Record: r, Payload: p}
		}
	}
	return Classified{Record: r, Payload: fallback(in)}
}

var defaultClassifier = NewClassifier(DefaultRules()...)

// Classify runs the default rule table
func Classify(r Record) Classified {
	return defaultClassifier.Classify(r)
}

// ClassifyAll classifies a thread, preserving order
func ClassifyAll(records []Record) []Classified {
	out := make([]Classified, 0, len(records))
	for _, r := range records {
		out = append(out, Classify(r))
	}
	return out
}

func declaredIs(names ...string) func(Input) bool {
	return func(in Input) bool {
		for _, n := range names {
			if in.Declared == n {
				return true
			}
		}
		return false
	}
}

func declaredOrMarker(marker *regexp.Regexp, names ...string) func(Input) bool {
	byName := declaredIs(names...)
	return func(in Input) bool {
		return byName(in) || marker.MatchString(in.Content)
	}
}

// DefaultRules returns the ordered rule table. Several predicates overlap,
// so the order is part of the contract.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "text",
			Match: func(in Input) bool {
				if in.Declared == "text" {
					return true
				}
				return in.Declared == "" && !in.Record.HasMedia() && !hasMarker(in.Content)
			},
			Extract: func(in Input) Payload { return Text{Body: in.Record.Content} },
		},
		{
			Name:    "reaction",
			Match:   declaredIs("reaction"),
			Extract: func(in Input) Payload { return Reaction{Emoji: in.Content} },
		},
		{
			Name: "media",
			Match: func(in Input) bool {
				if mediaTypeFor(in.Declared, in.Extension) == "" {
					return false
				}
				return in.Declared != "" || in.Record.HasMedia()
			},
			Extract: extractMedia,
		},
		{
			Name: "document",
			Match: func(in Input) bool {
				if in.Declared == "document" {
					return true
				}
				_, known := documentLabels[in.Extension]
				return known && ambiguousDeclared[in.Declared] && in.Record.HasMedia()
			},
			Extract: extractDocument,
		},
		{
			Name:  "location",
			Match: func(in Input) bool { return locationMarker.MatchString(in.Content) },
			Extract: func(in Input) Payload {
				loc, ok := parseLocation(in.Content)
				if !ok {
					return nil
				}
				return loc
			},
		},
		{
			Name:    "contact_card",
			Match:   declaredOrMarker(contactMarker, "contacts", "contact"),
			Extract: func(in Input) Payload { return ContactCard{Name: markerText(contactMarker, in.Content)} },
		},
		{
			Name:    "order",
			Match:   declaredOrMarker(orderMarker, "order"),
			Extract: func(in Input) Payload { return Order{Summary: markerText(orderMarker, in.Content)} },
		},
		{
			Name:    "payment",
			Match:   declaredOrMarker(paymentMarker, "payment"),
			Extract: func(in Input) Payload { return Payment{Summary: markerText(paymentMarker, in.Content)} },
		},
		{
			Name:  "button",
			Match: declaredOrMarker(buttonMarker, "button"),
			Extract: func(in Input) Payload {
				if text := markerText(buttonMarker, in.Content); text != "" {
					return Button{Text: text}
				}
				return Button{Text: in.Content}
			},
		},
		{
			Name:  "system",
			Match: declaredOrMarker(systemMarker, "system"),
			Extract: func(in Input) Payload {
				if body := markerText(systemMarker, in.Content); body != "" {
					return System{Body: body}
				}
				return System{Body: in.Content}
			},
		},
		{
			Name:    "request_welcome",
			Match:   declaredIs("request_welcome"),
			Extract: func(Input) Payload { return RequestWelcome{} },
		},
		{
			Name:    "unsupported",
			Match:   declaredOrMarker(unsupportedMarker, "unsupported", "unknown"),
			Extract: func(in Input) Payload { return Unsupported{URL: in.mediaURL()} },
		},
		{
			Name:    "interactive",
			Match:   declaredOrMarker(interactiveMarker, "interactive"),
			Extract: func(in Input) Payload { return parseInteractive(in.Content) },
		},
		{
			Name:    "template",
			Match:   declaredIs("template"),
			Extract: func(in Input) Payload { return ClassifyTemplate(in.Record.Content) },
		},
		{
			Name:    "fallback",
			Match:   func(Input) bool { return true },
			Extract: fallback,
		},
	}
}

func extractMedia(in Input) Payload {
	url := in.mediaURL()
	switch mediaTypeFor(in.Declared, in.Extension) {
	case TypeImage:
		return Image{URL: url, Caption: in.Content}
	case TypeSticker:
		return Sticker{URL: url}
	case TypeVideo:
		return Video{URL: url, Caption: in.Content}
	case TypeAudio:
		return Audio{URL: url, VoiceNote: voiceExtensions[in.Extension] || in.Content == ""}
	}
	return nil
}

func extractDocument(in Input) Payload {
	name := in.Record.Media.FileName()
	ext := in.Extension
	if name == "" {
		name = "document"
		if ext != "" {
			name += "." + ext
		}
	}
	return Document{
		URL:       in.mediaURL(),
		FileName:  name,
		Label:     DocumentLabel(ext),
		Extension: ext,
		Caption:   in.Content,
	}
}

func fallback(in Input) Payload {
	if in.Record.HasMedia() {
		return Attachment{URL: in.mediaURL(), Extension: in.Extension}
	}
	return Text{Body: in.Record.Content}
}
