package database

import (
	"context"
	"fmt"

	"whatsapp-engine/internal/models"
	"whatsapp-engine/internal/window"
)

// WindowSource feeds stored last_inbound_at values to a window.Refresher
type WindowSource struct {
	contacts *ContactDirectory
}

func NewWindowSource(contacts *ContactDirectory) *WindowSource {
	return &WindowSource{contacts: contacts}
}

func (s *WindowSource) LastInbound(ctx context.Context) ([]window.Entry, error) {
	var rows []models.Contact
	err := s.contacts.db.WithContext(ctx).
		Select("wa_id", "last_inbound_at").
		Where("last_inbound_at IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database: load last inbound: %w", err)
	}

	entries := make([]window.Entry, 0, len(rows))
	for _, c := range rows {
		entries = append(entries, window.Entry{
			Key:           window.WhatsApp(c.WaID),
			LastInboundAt: c.LastInboundAt.UTC(),
		})
	}
	return entries, nil
}

var _ window.Source = (*WindowSource)(nil)

