package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"whatsapp-engine/internal/template"
)

// TemplateRecord is one entry of the message_templates listing
type TemplateRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Language   string          `json:"language"`
	Category   string          `json:"category"`
	Status     string          `json:"status"`
	Components json.RawMessage `json:"components"`
}

type templatePage struct {
	Data   []TemplateRecord `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// maxTemplatePages bounds how far GetTemplates follows paging cursors
const maxTemplatePages = 50

// GetTemplates lists every template of the Business Account
func (c *Client) GetTemplates(ctx context.Context) ([]TemplateRecord, error) {
	url := c.endpoint(c.Config.WhatsAppBusinessAccountID + "/message_templates?limit=100")

	var all []TemplateRecord
	for page := 0; url != "" && page < maxTemplatePages; page++ {
		resp, err := c.sendRequest(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		var p templatePage
		if err := json.Unmarshal(resp, &p); err != nil {
			return nil, fmt.Errorf("whatsapp: decode templates: %w", err)
		}
		all = append(all, p.Data...)
		url = p.Paging.Next
	}
	return all, nil
}

// SendTemplate sends a bound template and returns its wamid
func (c *Client) SendTemplate(ctx context.Context, to string, b template.Binding) (string, error) {
	return c.SendRawMessage(ctx, GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "template",
		Template:         TemplateObject(b),
	})
}

// TemplateObject converts bound values into the send payload. Header and
// body parameters come from the per-component params; card values fill each
// card's body.
func TemplateObject(b template.Binding) *TemplateObj {
	obj := &TemplateObj{
		Name:     b.Name,
		Language: LanguageObj{Code: b.Language},
	}
	if len(b.Params.Header) > 0 {
		obj.Components = append(obj.Components, ComponentObj{
			Type:       "header",
			Parameters: textParams(b.Params.Header),
		})
	}
	if len(b.Params.Body) > 0 {
		obj.Components = append(obj.Components, ComponentObj{
			Type:       "body",
			Parameters: textParams(b.Params.Body),
		})
	}
	if len(b.Cards) > 0 {
		carousel := ComponentObj{Type: "carousel"}
		for i, values := range b.Cards {
			card := CardObj{CardIndex: i, Components: []ComponentObj{}}
			if len(values) > 0 {
				card.Components = append(card.Components, ComponentObj{
					Type:       "body",
					Parameters: textParams(values),
				})
			}
			carousel.Cards = append(carousel.Cards, card)
		}
		obj.Components = append(obj.Components, carousel)
	}
	return obj
}

func textParams(values []string) []ParameterObj {
	params := make([]ParameterObj, len(values))
	for i, v := range values {
		params[i] = ParameterObj{Type: "text", Text: v}
	}
	return params
}
