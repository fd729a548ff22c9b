package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/assetstore"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/audit"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/registry"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidImage  = errors.New("uploaded content is not a valid image")
	ErrInvalidUpload = errors.New("invalid upload")
)

// PreviewOptions bounds generated preview images.
type PreviewOptions struct {
	MaxWidth  int
	MaxHeight int
}

// directoryServiceImpl implements DirectoryService interface.
type directoryServiceImpl struct {
	registry  *registry.Registry
	store     AssetStore
	publisher Publisher
	ids       idgen.Generator
	preview   PreviewOptions
	now       func() time.Time
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(
	reg *registry.Registry,
	store AssetStore,
	publisher Publisher,
	ids idgen.Generator,
	preview PreviewOptions,
) DirectoryService {
	if preview.MaxWidth <= 0 {
		preview.MaxWidth = 320
	}
	if preview.MaxHeight <= 0 {
		preview.MaxHeight = 320
	}
	return &directoryServiceImpl{
		registry:  reg,
		store:     store,
		publisher: publisher,
		ids:       ids,
		preview:   preview,
		now:       time.Now,
	}
}

// ListForAdmin returns every asset of the channel, hidden ones included.
func (s *directoryServiceImpl) ListForAdmin(ctx context.Context, broadcaster string) []domain.Asset {
	return s.registry.GetOrCreate(broadcaster).Assets()
}

// ListVisible returns the assets that are not hidden.
func (s *directoryServiceImpl) ListVisible(ctx context.Context, broadcaster string) []domain.Asset {
	all := s.registry.GetOrCreate(broadcaster).Assets()
	visible := make([]domain.Asset, 0, len(all))
	for _, a := range all {
		if !a.Hidden {
			visible = append(visible, a)
		}
	}
	return visible
}

// GetAsset returns a single asset.
func (s *directoryServiceImpl) GetAsset(ctx context.Context, broadcaster, assetID string) (domain.Asset, error) {
	a, ok := s.registry.GetOrCreate(broadcaster).Asset(assetID)
	if !ok {
		return domain.Asset{}, ErrAssetNotFound
	}
	return a, nil
}

// CreateAsset validates an uploaded image, stores it and registers it on
// the channel.
func (s *directoryServiceImpl) CreateAsset(ctx context.Context, broadcaster string, upload domain.Upload) (domain.Asset, error) {
	l := log.Ctx(ctx)

	img, err := decodeImage(upload.Data)
	if err != nil {
		return domain.Asset{}, err
	}

	id, err := s.ids.Generate()
	if err != nil {
		return domain.Asset{}, err
	}

	channel := s.registry.GetOrCreate(broadcaster)
	mediaType, original := normalizeMediaType(upload.ContentType)
	bounds := img.Bounds()

	name := strings.TrimSpace(upload.Name)
	if name == "" {
		name = id
	}

	asset := domain.Asset{
		ID:                id,
		Broadcaster:       channel.Broadcaster(),
		Name:              name,
		Width:             float64(bounds.Dx()),
		Height:            float64(bounds.Dy()),
		MediaType:         mediaType,
		OriginalMediaType: original,
		CreatedAt:         s.now().UTC(),
	}

	contentPath, err := s.store.StoreAsset(ctx, asset.Broadcaster, id, upload.Data, mediaType)
	if err != nil {
		if assetstore.IsValidationError(err) {
			return domain.Asset{}, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
		}
		l.Error().Err(err).Str(log.FieldBroadcaster, asset.Broadcaster).Msg("failed to store asset content")
		return domain.Asset{}, err
	}
	asset.ContentPath = contentPath
	asset.PreviewPath = s.storePreview(ctx, asset, img)

	channel.Sequence(func() {
		channel.PutAsset(asset)
		s.publisher.Publish(ctx, asset.Broadcaster, domain.AssetCreated{Broadcaster: asset.Broadcaster, Asset: asset})
	})
	audit.Log(ctx, audit.ActionCreateAsset, asset.Broadcaster, asset.ID, "asset created")

	return asset, nil
}

// storePreview renders and stores a preview, returning "" on any failure.
func (s *directoryServiceImpl) storePreview(ctx context.Context, asset domain.Asset, img image.Image) string {
	l := log.Ctx(ctx)

	png, err := renderPreview(img, s.preview.MaxWidth, s.preview.MaxHeight)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldAssetID, asset.ID).Msg("failed to render preview")
		return ""
	}
	path, err := s.store.StorePreview(ctx, asset.Broadcaster, asset.ID, png)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldAssetID, asset.ID).Msg("failed to store preview")
		return ""
	}
	return path
}

// UpdateTransform replaces the geometry of an asset. Values are not range
// checked.
func (s *directoryServiceImpl) UpdateTransform(ctx context.Context, broadcaster, assetID string, t domain.Transform) (domain.Asset, error) {
	channel := s.registry.GetOrCreate(broadcaster)

	var (
		asset domain.Asset
		ok    bool
	)
	channel.Sequence(func() {
		if asset, ok = channel.UpdateAsset(assetID, t.Apply); ok {
			s.publisher.Publish(ctx, asset.Broadcaster, domain.AssetUpdated{Broadcaster: asset.Broadcaster, Asset: asset})
		}
	})
	if !ok {
		return domain.Asset{}, ErrAssetNotFound
	}

	audit.Log(ctx, audit.ActionUpdateAsset, asset.Broadcaster, asset.ID, "asset transformed")
	return asset, nil
}

// UpdateVisibility sets the hidden flag of an asset.
func (s *directoryServiceImpl) UpdateVisibility(ctx context.Context, broadcaster, assetID string, hidden bool) (domain.Asset, error) {
	channel := s.registry.GetOrCreate(broadcaster)

	var (
		asset domain.Asset
		ok    bool
	)
	channel.Sequence(func() {
		if asset, ok = channel.UpdateAsset(assetID, func(a *domain.Asset) { a.Hidden = hidden }); ok {
			s.publisher.Publish(ctx, asset.Broadcaster, domain.AssetVisibilityChanged{Broadcaster: asset.Broadcaster, Asset: asset})
		}
	})
	if !ok {
		return domain.Asset{}, ErrAssetNotFound
	}

	audit.Log(ctx, audit.ActionAssetVisibility, asset.Broadcaster, asset.ID, fmt.Sprintf("asset hidden=%t", hidden))
	return asset, nil
}

// DeleteAsset removes an asset and reports whether it existed. Backing files
// are removed best-effort.
func (s *directoryServiceImpl) DeleteAsset(ctx context.Context, broadcaster, assetID string) bool {
	channel := s.registry.GetOrCreate(broadcaster)

	var (
		asset domain.Asset
		ok    bool
	)
	channel.Sequence(func() {
		if asset, ok = channel.RemoveAsset(assetID); ok {
			s.publisher.Publish(ctx, channel.Broadcaster(), domain.AssetDeleted{Broadcaster: channel.Broadcaster(), ID: asset.ID})
		}
	})
	if !ok {
		return false
	}

	s.store.DeleteAssetFile(ctx, asset.ContentPath)
	s.store.DeletePreviewFile(ctx, asset.PreviewPath)

	audit.Log(ctx, audit.ActionDeleteAsset, channel.Broadcaster(), asset.ID, "asset deleted")
	return true
}

func (s *directoryServiceImpl) AddAdmin(ctx context.Context, broadcaster, username string) bool {
	changed := s.registry.AddAdmin(broadcaster, username)
	if changed {
		s.publisher.ReplicateAdmin(ctx, broadcaster, username, true)
		audit.Log(ctx, audit.ActionAddAdmin, strings.ToLower(broadcaster), strings.ToLower(username), "admin added")
	}
	return changed
}

func (s *directoryServiceImpl) RemoveAdmin(ctx context.Context, broadcaster, username string) bool {
	changed := s.registry.RemoveAdmin(broadcaster, username)
	if changed {
		s.publisher.ReplicateAdmin(ctx, broadcaster, username, false)
		audit.Log(ctx, audit.ActionRemoveAdmin, strings.ToLower(broadcaster), strings.ToLower(username), "admin removed")
	}
	return changed
}

func (s *directoryServiceImpl) Admins(ctx context.Context, broadcaster string) []string {
	return s.registry.Admins(broadcaster)
}

func (s *directoryServiceImpl) AdminChannelsFor(ctx context.Context, username string) []string {
	return s.registry.AdminChannelsFor(username)
}

func (s *directoryServiceImpl) CanManage(broadcaster, username string) bool {
	return s.registry.CanManage(broadcaster, username)
}

func (s *directoryServiceImpl) IsBroadcaster(broadcaster, username string) bool {
	return s.registry.IsBroadcaster(broadcaster, username)
}
