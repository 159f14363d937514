package database

import (
	"context"
	"fmt"

	"whatsapp-engine/internal/models"
	"whatsapp-engine/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyBatchSize = 500

// CopyResult is the number of rows read from each table
type CopyResult map[string]int

// Copy moves every engine table from src into dst. Rows already present in
// dst are left untouched, so the copy can be re-run after a partial failure.
func Copy(ctx context.Context, src, dst *gorm.DB) (CopyResult, error) {
	if err := Migrate(dst); err != nil {
		return nil, err
	}

	result := CopyResult{}
	steps := []struct {
		table string
		copy  func() (int, error)
	}{
		{"contacts", func() (int, error) { return copyTable[models.Contact](ctx, src, dst) }},
		{"messages", func() (int, error) { return copyTable[models.Message](ctx, src, dst) }},
		{"templates", func() (int, error) { return copyTable[models.Template](ctx, src, dst) }},
		{"system_settings", func() (int, error) { return copyTable[models.SystemSetting](ctx, src, dst) }},
	}
	for _, s := range steps {
		n, err := s.copy()
		if err != nil {
			return result, fmt.Errorf("database: copy %s: %w", s.table, err)
		}
		result[s.table] = n
		logger.Info().Str("table", s.table).Int("rows", n).Msg("Table copied")
	}
	return result, nil
}

func copyTable[T any](ctx context.Context, src, dst *gorm.DB) (int, error) {
	var batch []T
	total := 0
	res := src.WithContext(ctx).FindInBatches(&batch, copyBatchSize, func(tx *gorm.DB, _ int) error {
		total += len(batch)
		return dst.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error
	})
	return total, res.Error
}
