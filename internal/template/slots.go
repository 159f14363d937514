package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var placeholderRe = regexp.MustCompile(`\{\{(\d+)\}\}`)

// Slot is one numbered substitution point and the value bound to it
type Slot struct {
	Index       int    `json:"index"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Slots holds the top-level scope and one independent scope per carousel card.
// Update methods return a new Slots and never touch the receiver.
type Slots struct {
	Body  []Slot   `json:"body"`
	Cards [][]Slot `json:"cards"`
}

// Marker renders the placeholder for an index, e.g. {{2}}
func Marker(index int) string {
	return fmt.Sprintf("{{%d}}", index)
}

// Indices returns the distinct placeholder indices in text, ascending
func Indices(texts ...string) []int {
	seen := make(map[int]bool)
	for _, text := range texts {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			seen[n] = true
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func slotsFor(texts ...string) []Slot {
	indices := Indices(texts...)
	out := make([]Slot, 0, len(indices))
	for _, n := range indices {
		out = append(out, Slot{Index: n, Placeholder: Marker(n)})
	}
	return out
}

// Extract scans the definition for {{n}} markers. Every non-carousel component
// shares the top-level scope; each carousel card is scanned on its own.
func Extract(def Definition) Slots {
	var texts []string
	cards := [][]Slot{}
	for _, c := range def.Components {
		if c.Type == ComponentCarousel {
			for _, card := range c.Cards {
				var cardTexts []string
				for _, cc := range card.Components {
					cardTexts = append(cardTexts, cc.Text)
				}
				cards = append(cards, slotsFor(cardTexts...))
			}
			continue
		}
		if c.Text != "" {
			texts = append(texts, c.Text)
		}
	}
	return Slots{Body: slotsFor(texts...), Cards: cards}
}

// ExtractFor extracts slots and pre-fills the lowest top-level slot with the
// contact's display name when one is known.
func ExtractFor(def Definition, displayName string) Slots {
	return Extract(def).WithDefaultName(displayName)
}

// WithDefaultName fills the first top-level slot with name if it is still empty
func (s Slots) WithDefaultName(name string) Slots {
	out := s.Clone()
	if name == "" || len(out.Body) == 0 || out.Body[0].Value != "" {
		return out
	}
	out.Body[0].Value = name
	return out
}

// Set binds a value to a top-level slot
func (s Slots) Set(index int, value string) Slots {
	out := s.Clone()
	for i := range out.Body {
		if out.Body[i].Index == index {
			out.Body[i].Value = value
		}
	}
	return out
}

// SetCard binds a value to a slot of one carousel card
func (s Slots) SetCard(card, index int, value string) Slots {
	out := s.Clone()
	if card < 0 || card >= len(out.Cards) {
		return out
	}
	for i := range out.Cards[card] {
		if out.Cards[card][i].Index == index {
			out.Cards[card][i].Value = value
		}
	}
	return out
}

// Apply binds top-level values and per-card values keyed by placeholder index
func (s Slots) Apply(body map[int]string, cards []map[int]string) Slots {
	out := s.Clone()
	for i := range out.Body {
		if v, ok := body[out.Body[i].Index]; ok {
			out.Body[i].Value = v
		}
	}
	for c := range out.Cards {
		if c >= len(cards) {
			break
		}
		for i := range out.Cards[c] {
			if v, ok := cards[c][out.Cards[c][i].Index]; ok {
				out.Cards[c][i].Value = v
			}
		}
	}
	return out
}

// Input is what a user entered for a template: values keyed by placeholder
// index for the top-level scope and for each carousel card. DisplayName, when
// set, prefills the lowest top-level slot unless the input gives it a value.
type Input struct {
	Body        map[int]string   `json:"body"`
	Cards       []map[int]string `json:"cards"`
	DisplayName string           `json:"-"`
}

// SlotsFor extracts the slots of def and binds the input to them. Values for
// indices the definition does not use are ignored.
func (in Input) SlotsFor(def Definition) Slots {
	return ExtractFor(def, in.DisplayName).Apply(in.Body, in.Cards)
}

// Clone deep-copies every scope
func (s Slots) Clone() Slots {
	out := Slots{
		Body:  append([]Slot{}, s.Body...),
		Cards: make([][]Slot, len(s.Cards)),
	}
	for i, card := range s.Cards {
		out.Cards[i] = append([]Slot{}, card...)
	}
	return out
}

// Count returns the number of slots across all scopes
func (s Slots) Count() int {
	n := len(s.Body)
	for _, card := range s.Cards {
		n += len(card)
	}
	return n
}
