package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSlots matches any *MissingSlotsError through errors.Is
var ErrMissingSlots = errors.New("template: missing slot values")

// BodyScope is the Card value of a SlotRef that points at the top-level scope
const BodyScope = -1

// SlotRef identifies a slot by scope and index
type SlotRef struct {
	Card  int `json:"card"`
	Index int `json:"index"`
}

// MissingSlotsError lists every slot left blank after trimming
type MissingSlotsError struct {
	Missing []SlotRef
}

func (e *MissingSlotsError) Error() string {
	if len(e.Missing) == 1 {
		return "1 field incomplete"
	}
	return fmt.Sprintf("%d fields incomplete", len(e.Missing))
}

// Count is the number of blank slots
func (e *MissingSlotsError) Count() int {
	return len(e.Missing)
}

func (e *MissingSlotsError) Is(target error) bool {
	return target == ErrMissingSlots
}

// Values are positional parameters ready for send, ordered by slot index
type Values struct {
	Body  []string   `json:"body"`
	Cards [][]string `json:"cards"`
}

// Validate succeeds only when every slot in every scope has a non-blank value.
// Values are trimmed before the blank check but sent as entered.
func Validate(s Slots) (Values, error) {
	var missing []SlotRef
	collect := func(card int, scope []Slot) []string {
		out := make([]string, 0, len(scope))
		for _, slot := range scope {
			if strings.TrimSpace(slot.Value) == "" {
				missing = append(missing, SlotRef{Card: card, Index: slot.Index})
			}
			out = append(out, slot.Value)
		}
		return out
	}

	values := Values{Body: collect(BodyScope, s.Body), Cards: make([][]string, 0, len(s.Cards))}
	for i, card := range s.Cards {
		values.Cards = append(values.Cards, collect(i, card))
	}
	if len(missing) > 0 {
		return Values{}, &MissingSlotsError{Missing: missing}
	}
	return values, nil
}

// Params are the send parameters of each top-level component. The merged
// top-level scope is split back into the components each index appears in,
// so an index used by both HEADER and BODY is sent in both.
type Params struct {
	Header []string `json:"header,omitempty"`
	Body   []string `json:"body,omitempty"`
}

// Binding is a validated template ready for the delivery service
type Binding struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Values
	Params       Params   `json:"params"`
	Preview      string   `json:"preview"`
	CardPreviews []string `json:"card_previews,omitempty"`
}

// Bind validates slots against a definition and produces the send payload
// with a merged preview of the body and each card.
func Bind(def Definition, s Slots) (Binding, error) {
	values, err := Validate(s)
	if err != nil {
		return Binding{}, err
	}
	p := Previews(def, s)
	return Binding{
		Name:         def.Name,
		Language:     def.Language,
		Values:       values,
		Params:       paramsFor(def, s.Body),
		Preview:      p.Body,
		CardPreviews: p.Cards,
	}, nil
}

func paramsFor(def Definition, scope []Slot) Params {
	byIndex := make(map[int]string, len(scope))
	for _, slot := range scope {
		byIndex[slot.Index] = slot.Value
	}
	pick := func(text string) []string {
		indices := Indices(text)
		if len(indices) == 0 {
			return nil
		}
		out := make([]string, 0, len(indices))
		for _, n := range indices {
			out = append(out, byIndex[n])
		}
		return out
	}

	var out Params
	if header, ok := def.find(ComponentHeader); ok && (header.Format == "" || strings.EqualFold(header.Format, "TEXT")) {
		out.Header = pick(header.Text)
	}
	if body, ok := def.Body(); ok {
		out.Body = pick(body.Text)
	}
	return out
}
