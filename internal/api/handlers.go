package api

import (
	"context"
	"io"
	"time"

	"whatsapp-engine/internal/composer"
	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/models"
	"whatsapp-engine/internal/template"
	"whatsapp-engine/internal/whatsapp"
	"whatsapp-engine/internal/window"

	"github.com/gin-gonic/gin"
)

type MessageReader interface {
	ListByContact(ctx context.Context, contactID string, limit int) ([]message.Record, error)
}

type ContactStore interface {
	List(ctx context.Context) ([]models.Contact, error)
	Get(ctx context.Context, waID string) (models.Contact, error)
	DisplayName(ctx context.Context, waID string) (string, error)
	Upsert(ctx context.Context, c models.Contact) error
	Update(ctx context.Context, waID, name, tags string) error
	Delete(ctx context.Context, waID string) error
}

type TemplateStore interface {
	Upsert(ctx context.Context, templates []models.Template) error
	Approved(ctx context.Context) ([]template.Definition, error)
	FindApproved(ctx context.Context, name, language string) (template.Definition, error)
}

// TemplateSource lists templates from the Business Account
type TemplateSource interface {
	GetTemplates(ctx context.Context) ([]whatsapp.TemplateRecord, error)
}

// MediaSource streams provider media by id
type MediaSource interface {
	DownloadMedia(ctx context.Context, mediaID string) (io.ReadCloser, string, error)
}

// Notifier pushes live updates after a send
type Notifier interface {
	NotifyMessage(msg message.Classified, snapshot window.Snapshot)
}

// Deps wires the handlers to storage, delivery and the live hub
type Deps struct {
	Messages  MessageReader
	Contacts  ContactStore
	Templates TemplateStore
	Source    TemplateSource
	Media     MediaSource
	Composer  *composer.Composer
	Notifier  Notifier
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Register mounts every API route on the group
func Register(g *gin.RouterGroup, d Deps) {
	conversations := NewConversationHandler(d)
	templates := NewTemplateHandler(d)
	contacts := NewContactHandler(d.Contacts)
	media := NewMediaHandler(d.Media)

	g.GET("/conversations/:waId", conversations.GetConversation)
	g.GET("/conversations/:waId/window", conversations.GetWindow)
	g.POST("/send/text", conversations.SendText)

	g.GET("/templates", templates.GetTemplates)
	g.POST("/templates/sync", templates.SyncTemplates)
	g.GET("/templates/:name/slots", templates.GetSlots)
	g.POST("/templates/:name/preview", templates.Preview)
	g.POST("/send/template", templates.SendTemplate)
	g.POST("/broadcast", templates.SendBroadcast)

	g.GET("/contacts", contacts.GetContacts)
	g.POST("/contacts", contacts.CreateContact)
	g.GET("/contacts/export", contacts.ExportContacts)
	g.PUT("/contacts/:waId", contacts.UpdateContact)
	g.DELETE("/contacts/:waId", contacts.DeleteContact)

	g.GET("/media/:id/:filename", media.Proxy)
}
