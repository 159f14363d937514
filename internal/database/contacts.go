package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatsapp-engine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactDirectory stores contacts and their last inbound instant
type ContactDirectory struct {
	db *gorm.DB
}

func NewContactDirectory(db *gorm.DB) *ContactDirectory {
	return &ContactDirectory{db: db}
}

func (d *ContactDirectory) List(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := d.db.WithContext(ctx).Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("database: list contacts: %w", err)
	}
	return contacts, nil
}

func (d *ContactDirectory) Get(ctx context.Context, waID string) (models.Contact, error) {
	var c models.Contact
	err := d.db.WithContext(ctx).Where("wa_id = ?", waID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Contact{}, ErrNotFound
	}
	if err != nil {
		return models.Contact{}, fmt.Errorf("database: get contact %s: %w", waID, err)
	}
	return c, nil
}

// DisplayName returns the stored name, or "" when the contact is unknown
func (d *ContactDirectory) DisplayName(ctx context.Context, waID string) (string, error) {
	c, err := d.Get(ctx, waID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Upsert creates the contact or overwrites its name and tags
func (d *ContactDirectory) Upsert(ctx context.Context, c models.Contact) error {
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wa_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "tags", "updated_at"}),
	}).Create(&c).Error
	if err != nil {
		return fmt.Errorf("database: upsert contact %s: %w", c.WaID, err)
	}
	return nil
}

// Ensure creates a contact on first contact. An existing contact only
// picks up the profile name if it has none yet.
func (d *ContactDirectory) Ensure(ctx context.Context, waID, profileName string) error {
	db := d.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Contact{WaID: waID, Name: profileName}).Error
	if err != nil {
		return fmt.Errorf("database: ensure contact %s: %w", waID, err)
	}
	if profileName == "" {
		return nil
	}
	err = db.Model(&models.Contact{}).
		Where("wa_id = ? AND (name IS NULL OR name = '')", waID).
		Update("name", profileName).Error
	if err != nil {
		return fmt.Errorf("database: name contact %s: %w", waID, err)
	}
	return nil
}

// TouchLastInbound moves last_inbound_at forward only. It reports whether
// the stored value changed.
func (d *ContactDirectory) TouchLastInbound(ctx context.Context, waID string, at time.Time) (bool, error) {
	at = at.UTC()
	res := d.db.WithContext(ctx).Model(&models.Contact{}).
		Where("wa_id = ? AND (last_inbound_at IS NULL OR last_inbound_at < ?)", waID, at).
		Update("last_inbound_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("database: touch contact %s: %w", waID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (d *ContactDirectory) Update(ctx context.Context, waID, name, tags string) error {
	res := d.db.WithContext(ctx).Model(&models.Contact{}).
		Where("wa_id = ?", waID).
		Updates(map[string]any{"name": name, "tags": tags})
	if res.Error != nil {
		return fmt.Errorf("database: update contact %s: %w", waID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *ContactDirectory) Delete(ctx context.Context, waID string) error {
	res := d.db.WithContext(ctx).Where("wa_id = ?", waID).Delete(&models.Contact{})
	if res.Error != nil {
		return fmt.Errorf("database: delete contact %s: %w", waID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
