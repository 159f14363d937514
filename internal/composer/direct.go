package composer

import (
	"context"

	"whatsapp-engine/internal/template"
)

// Sender is the provider client
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendTemplate(ctx context.Context, to string, b template.Binding) (string, error)
}

// Direct delivers synchronously through a Sender
type Direct struct {
	Sender Sender
}

func (d Direct) Deliver(ctx context.Context, o Outbound) (string, error) {
	if o.Template != nil {
		return d.Sender.SendTemplate(ctx, o.To, *o.Template)
	}
	return d.Sender.SendText(ctx, o.To, o.Body)
}
