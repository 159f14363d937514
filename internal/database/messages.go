package database

import (
	"context"
	"errors"
	"fmt"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageStore persists message records
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Save inserts a record. A redelivered webhook with a known id is ignored.
func (s *MessageStore) Save(ctx context.Context, r message.Record) error {
	m := toMessageModel(r)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("database: save message %s: %w", r.ID, err)
	}
	return nil
}

// Get loads a single record
func (s *MessageStore) Get(ctx context.Context, id string) (message.Record, error) {
	var m models.Message
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return message.Record{}, ErrNotFound
	}
	if err != nil {
		return message.Record{}, fmt.Errorf("database: get message %s: %w", id, err)
	}
	return toRecord(m), nil
}

// ListByContact returns a contact's thread oldest first. A limit <= 0
// returns the whole thread; otherwise the most recent limit records.
func (s *MessageStore) ListByContact(ctx context.Context, contactID string, limit int) ([]message.Record, error) {
	var rows []models.Message
	q := s.db.WithContext(ctx).Where("contact_id = ?", contactID)
	if limit > 0 {
		q = q.Order("timestamp DESC").Limit(limit)
	} else {
		q = q.Order("timestamp ASC")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database: list messages for %s: %w", contactID, err)
	}

	records := make([]message.Record, len(rows))
	for i, m := range rows {
		records[i] = toRecord(m)
	}
	if limit > 0 {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, nil
}

// UpdateStatus applies a delivery receipt. It reports false when the
// message is unknown or the receipt would move the status backward.
func (s *MessageStore) UpdateStatus(ctx context.Context, id string, next message.Status) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Message
		err := tx.Where("id = ?", id).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !message.Status(m.Status).Advances(next) {
			return nil
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", id).Update("status", string(next)).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("database: update status of %s: %w", id, err)
	}
	return applied, nil
}

// Confirm re-keys a queued message under the wamid the provider assigned
// and marks it sent.
func (s *MessageStore) Confirm(ctx context.Context, localID, wamid string) error {
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", localID).
		Updates(map[string]any{"id": wamid, "status": string(message.StatusSent)})
	if res.Error != nil {
		return fmt.Errorf("database: confirm %s as %s: %w", localID, wamid, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toMessageModel(r message.Record) models.Message {
	m := models.Message{
		ID:           r.ID,
		ContactID:    r.ContactID,
		Direction:    string(r.Direction),
		DeclaredType: r.DeclaredType,
		Content:      r.Content,
		Status:       string(r.Status),
		Timestamp:    r.Timestamp.UTC(),
	}
	if r.Media != nil {
		m.MediaURL = r.Media.URL
		m.FileExtension = r.Media.FileExtension
	}
	return m
}

func toRecord(m models.Message) message.Record {
	r := message.Record{
		ID:           m.ID,
		Direction:    message.Direction(m.Direction),
		ContactID:    m.ContactID,
		DeclaredType: m.DeclaredType,
		Content:      m.Content,
		Timestamp:    m.Timestamp.UTC(),
		Status:       message.Status(m.Status),
	}
	if m.MediaURL != "" {
		r.Media = &message.MediaRef{URL: m.MediaURL, FileExtension: m.FileExtension}
	}
	return r
}
