package database

import (
	"context"
	"errors"
	"fmt"

	"whatsapp-engine/internal/models"
	"whatsapp-engine/internal/template"
	"whatsapp-engine/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateCatalog caches the Business Account's message templates
type TemplateCatalog struct {
	db *gorm.DB
}

func NewTemplateCatalog(db *gorm.DB) *TemplateCatalog {
	return &TemplateCatalog{db: db}
}

// Upsert stores templates keyed by their Graph API id
func (c *TemplateCatalog) Upsert(ctx context.Context, templates []models.Template) error {
	if len(templates) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "language", "category", "status", "components", "updated_at"}),
	}).Create(&templates).Error
	if err != nil {
		return fmt.Errorf("database: upsert templates: %w", err)
	}
	return nil
}

func (c *TemplateCatalog) List(ctx context.Context) ([]models.Template, error) {
	rows := []models.Template{}
	if err := c.db.WithContext(ctx).Order("name ASC, language ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database: list templates: %w", err)
	}
	return rows, nil
}

// Approved returns every approved template that parses. Rows that fail
// to parse are logged and skipped.
func (c *TemplateCatalog) Approved(ctx context.Context) ([]template.Definition, error) {
	var rows []models.Template
	err := c.db.WithContext(ctx).
		Where("status = ?", template.StatusApproved).
		Order("name ASC, language ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database: list approved templates: %w", err)
	}

	defs := make([]template.Definition, 0, len(rows))
	for _, row := range rows {
		def, err := toDefinition(row)
		if err != nil {
			logger.Warn().Err(err).Str("template", row.Name).Msg("Skipping unparseable template")
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// FindApproved looks a template up by name. An empty language matches
// any language.
func (c *TemplateCatalog) FindApproved(ctx context.Context, name, language string) (template.Definition, error) {
	q := c.db.WithContext(ctx).Where("name = ? AND status = ?", name, template.StatusApproved)
	if language != "" {
		q = q.Where("language = ?", language)
	}
	var row models.Template
	err := q.Order("language ASC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return template.Definition{}, ErrNotFound
	}
	if err != nil {
		return template.Definition{}, fmt.Errorf("database: find template %s: %w", name, err)
	}
	return toDefinition(row)
}

func toDefinition(row models.Template) (template.Definition, error) {
	return template.Parse(row.Name, row.Language, row.Category, row.Status, row.Components)
}
