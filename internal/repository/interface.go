package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
)

var (
	ErrScriptAssetNotFound = errors.New("script asset not found")
)

// ScriptAssetRepository defines persistence for script assets. Every
// lookup is scoped to the owning broadcaster.
type ScriptAssetRepository interface {
	Create(ctx context.Context, asset *domain.ScriptAsset) error
	GetByID(ctx context.Context, broadcaster, id string) (*domain.ScriptAsset, error)
	ListByBroadcaster(ctx context.Context, broadcaster string) ([]domain.ScriptAsset, error)
	Update(ctx context.Context, asset *domain.ScriptAsset) error
	Delete(ctx context.Context, broadcaster, id string) error
}
