package template

import (
	"fmt"
	"strings"
)

// RenderPreview replaces each {{index}} with its bound value, or with a
// [Variable n] label when the value is blank. Markers with no slot are kept.
func RenderPreview(text string, slots []Slot) string {
	if len(slots) == 0 {
		return text
	}
	pairs := make([]string, 0, len(slots)*2)
	for _, s := range slots {
		v := s.Value
		if strings.TrimSpace(v) == "" {
			v = fmt.Sprintf("[Variable %d]", s.Index)
		}
		pairs = append(pairs, Marker(s.Index), v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Preview is the rendered text of every scope
type Preview struct {
	Body  string   `json:"body"`
	Cards []string `json:"cards,omitempty"`
}

// Previews renders the top-level BODY and each card's body text
func Previews(def Definition, s Slots) Preview {
	var out Preview
	if body, ok := def.Body(); ok {
		out.Body = RenderPreview(body.Text, s.Body)
	}
	if carousel, ok := def.Carousel(); ok {
		for i, card := range carousel.Cards {
			var scope []Slot
			if i < len(s.Cards) {
				scope = s.Cards[i]
			}
			out.Cards = append(out.Cards, RenderPreview(card.BodyText(), scope))
		}
	}
	return out
}
