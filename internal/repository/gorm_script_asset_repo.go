package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
)

// GormScriptAssetRepository implements ScriptAssetRepository using GORM.
type GormScriptAssetRepository struct {
	db *gorm.DB
}

// NewGormScriptAssetRepository creates a new GORM-based script asset repository.
func NewGormScriptAssetRepository(db *gorm.DB) *GormScriptAssetRepository {
	return &GormScriptAssetRepository{db: db}
}

// Create inserts a script asset. The caller assigns the id.
func (r *GormScriptAssetRepository) Create(ctx context.Context, asset *domain.ScriptAsset) error {
	l := log.Ctx(ctx)

	model := domain.ScriptAssetToModel(asset)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldBroadcaster, asset.Broadcaster).Msg("failed to create script asset in db")
		return err
	}

	asset.CreatedAt = model.CreatedAt
	asset.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a script asset owned by broadcaster.
func (r *GormScriptAssetRepository) GetByID(ctx context.Context, broadcaster, id string) (*domain.ScriptAsset, error) {
	l := log.Ctx(ctx)

	var model domain.ScriptAssetModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND broadcaster = ?", id, broadcaster).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScriptAssetNotFound
		}
		l.Error().Err(err).Str(log.FieldAssetID, id).Msg("failed to get script asset")
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByBroadcaster returns a broadcaster's script assets, oldest first.
func (r *GormScriptAssetRepository) ListByBroadcaster(ctx context.Context, broadcaster string) ([]domain.ScriptAsset, error) {
	l := log.Ctx(ctx)

	var models []domain.ScriptAssetModel
	err := r.db.WithContext(ctx).
		Where("broadcaster = ?", broadcaster).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldBroadcaster, broadcaster).Msg("failed to list script assets")
		return nil, err
	}

	assets := make([]domain.ScriptAsset, len(models))
	for i, model := range models {
		assets[i] = *model.ToDomain()
	}
	return assets, nil
}

// Update replaces the name and source of a script asset.
func (r *GormScriptAssetRepository) Update(ctx context.Context, asset *domain.ScriptAsset) error {
	l := log.Ctx(ctx)

	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.ScriptAssetModel{}).
		Where("id = ? AND broadcaster = ?", asset.ID, asset.Broadcaster).
		Updates(map[string]any{
			"name":       asset.Name,
			"source":     asset.Source,
			"updated_at": now,
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldAssetID, asset.ID).Msg("failed to update script asset")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScriptAssetNotFound
	}
	asset.UpdatedAt = now
	return nil
}

// Delete hard-deletes a script asset.
func (r *GormScriptAssetRepository) Delete(ctx context.Context, broadcaster, id string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).
		Where("id = ? AND broadcaster = ?", id, broadcaster).
		Delete(&domain.ScriptAssetModel{})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldAssetID, id).Msg("failed to delete script asset")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScriptAssetNotFound
	}
	return nil
}
