package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
)

// DirectoryService manages the assets and admins of broadcaster channels.
// Every successful mutation emits exactly one asset event.
type DirectoryService interface {
	ListForAdmin(ctx context.Context, broadcaster string) []domain.Asset
	ListVisible(ctx context.Context, broadcaster string) []domain.Asset
	GetAsset(ctx context.Context, broadcaster, assetID string) (domain.Asset, error)
	CreateAsset(ctx context.Context, broadcaster string, upload domain.Upload) (domain.Asset, error)
	UpdateTransform(ctx context.Context, broadcaster, assetID string, t domain.Transform) (domain.Asset, error)
	UpdateVisibility(ctx context.Context, broadcaster, assetID string, hidden bool) (domain.Asset, error)
	DeleteAsset(ctx context.Context, broadcaster, assetID string) bool

	AddAdmin(ctx context.Context, broadcaster, username string) bool
	RemoveAdmin(ctx context.Context, broadcaster, username string) bool
	Admins(ctx context.Context, broadcaster string) []string
	AdminChannelsFor(ctx context.Context, username string) []string
	CanManage(broadcaster, username string) bool
	IsBroadcaster(broadcaster, username string) bool
}

// ScriptAssetService manages code assets stored in the database.
type ScriptAssetService interface {
	List(ctx context.Context, broadcaster string) ([]domain.ScriptAsset, error)
	Get(ctx context.Context, broadcaster, id string) (*domain.ScriptAsset, error)
	Create(ctx context.Context, broadcaster string, req *domain.CodeAssetRequest) (*domain.ScriptAsset, error)
	Update(ctx context.Context, broadcaster, id string, req *domain.CodeAssetRequest) (*domain.ScriptAsset, error)
	Delete(ctx context.Context, broadcaster, id string) error
}

// Publisher receives the events produced by DirectoryService.
// ReplicateAdmin forwards admin grants to other instances; it never reaches
// overlay clients.
type Publisher interface {
	Publish(ctx context.Context, broadcaster string, event domain.AssetEvent)
	ReplicateAdmin(ctx context.Context, broadcaster, username string, granted bool)
}

// AssetStore persists asset content and previews.
type AssetStore interface {
	StoreAsset(ctx context.Context, broadcaster, assetID string, data []byte, mediaType string) (string, error)
	StorePreview(ctx context.Context, broadcaster, assetID string, png []byte) (string, error)
	DeleteAssetFile(ctx context.Context, rel string)
	DeletePreviewFile(ctx context.Context, rel string)
}
