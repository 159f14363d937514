package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateBody     = errors.New("template: more than one BODY component")
	ErrDuplicateCarousel = errors.New("template: more than one CAROUSEL component")
)

// Category of an approved template
type Category string

const (
	CategoryUtility        Category = "UTILITY"
	CategoryMarketing      Category = "MARKETING"
	CategoryAuthentication Category = "AUTHENTICATION"
)

// StatusApproved is the only catalog status the composer is handed
const StatusApproved = "APPROVED"

// ComponentType names a block of a template
type ComponentType string

const (
	ComponentHeader   ComponentType = "HEADER"
	ComponentBody     ComponentType = "BODY"
	ComponentFooter   ComponentType = "FOOTER"
	ComponentButtons  ComponentType = "BUTTONS"
	ComponentCarousel ComponentType = "CAROUSEL"
)

type Button struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Card is one carousel card; its components form a separate placeholder scope
type Card struct {
	Components []Component `json:"components"`
}

type Component struct {
	Type    ComponentType `json:"type"`
	Format  string        `json:"format,omitempty"`
	Text    string        `json:"text,omitempty"`
	Buttons []Button      `json:"buttons,omitempty"`
	Cards   []Card        `json:"cards,omitempty"`
}

// Definition is an approved, parameterized message template
type Definition struct {
	Name       string      `json:"name"`
	Language   string      `json:"language"`
	Category   Category    `json:"category"`
	Status     string      `json:"status,omitempty"`
	Components []Component `json:"components"`
}

// Body returns the top-level BODY component, if any
func (d Definition) Body() (Component, bool) {
	return d.find(ComponentBody)
}

// Carousel returns the CAROUSEL component, if any
func (d Definition) Carousel() (Component, bool) {
	return d.find(ComponentCarousel)
}

func (d Definition) find(t ComponentType) (Component, bool) {
	for _, c := range d.Components {
		if c.Type == t {
			return c, true
		}
	}
	return Component{}, false
}

// Text joins the text of a card's components in declaration order
func (c Card) Text() string {
	var parts []string
	for _, comp := range c.Components {
		if comp.Text != "" {
			parts = append(parts, comp.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// BodyText returns the BODY text of a card, falling back to all its text
func (c Card) BodyText() string {
	for _, comp := range c.Components {
		if comp.Type == ComponentBody {
			return comp.Text
		}
	}
	return c.Text()
}

// Validate checks the structural invariants of a definition
func (d Definition) Validate() error {
	var bodies, carousels int
	for _, c := range d.Components {
		switch c.Type {
		case ComponentBody:
			bodies++
		case ComponentCarousel:
			carousels++
		}
	}
	if bodies > 1 {
		return ErrDuplicateBody
	}
	if carousels > 1 {
		return ErrDuplicateCarousel
	}
	return nil
}

// IsApproved reports whether the catalog marked the template approved
func (d Definition) IsApproved() bool {
	return strings.EqualFold(d.Status, StatusApproved)
}

// Parse builds a definition from the provider's JSON component list
func Parse(name, language, category, status, componentsJSON string) (Definition, error) {
	def := Definition{
		Name:     name,
		Language: language,
		Category: Category(strings.ToUpper(category)),
		Status:   status,
	}
	if strings.TrimSpace(componentsJSON) != "" {
		if err := json.Unmarshal([]byte(componentsJSON), &def.Components); err != nil {
			return Definition{}, fmt.Errorf("template %s: decode components: %w", name, err)
		}
	}
	for i := range def.Components {
		def.Components[i].Type = ComponentType(strings.ToUpper(string(def.Components[i].Type)))
		for j := range def.Components[i].Cards {
			card := &def.Components[i].Cards[j]
			for k := range card.Components {
				card.Components[k].Type = ComponentType(strings.ToUpper(string(card.Components[k].Type)))
			}
		}
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("template %s: %w", name, err)
	}
	return def, nil
}
