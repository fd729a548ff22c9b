package assetstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/storage"
)

var (
	ErrPathEscape           = storage.ErrPathEscape
	ErrInvalidBroadcaster   = errors.New("broadcaster name is empty after sanitization")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEmptyContent         = errors.New("content is empty")
)

const (
	previewExtension = ".png"
	previewMediaType = "image/png"
)

// Content is a loaded file and its resolved media type.
type Content struct {
	Data      []byte
	MediaType string
}

// Store persists asset content and previews in two independent backends.
type Store struct {
	content  storage.Storage
	previews storage.Storage
}

// New creates a Store over the content and preview backends.
func New(content, previews storage.Storage) *Store {
	return &Store{content: content, previews: previews}
}

// IsValidationError reports whether err was caused by the input rather than
// by the backend.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBroadcaster) ||
		errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrPathEscape)
}

// StoreAsset writes data to {broadcaster}/{assetID}{ext} in the content
// backend and returns that relative path.
func (s *Store) StoreAsset(ctx context.Context, broadcaster, assetID string, data []byte, mediaType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	ext, err := ExtensionFor(mediaType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, mediaType)
	}
	rel, err := relativePath(broadcaster, assetID, ext)
	if err != nil {
		return "", err
	}
	if err := s.content.Write(ctx, rel, bytes.NewReader(data), int64(len(data)), mediaType); err != nil {
		return "", fmt.Errorf("write asset %s: %w", rel, err)
	}
	return rel, nil
}

// StorePreview writes a PNG preview and returns its relative path. Empty
// input means there is no preview and yields "".
func (s *Store) StorePreview(ctx context.Context, broadcaster, assetID string, png []byte) (string, error) {
	if len(png) == 0 {
		return "", nil
	}
	rel, err := relativePath(broadcaster, assetID, previewExtension)
	if err != nil {
		return "", err
	}
	if err := s.previews.Write(ctx, rel, bytes.NewReader(png), int64(len(png)), previewMediaType); err != nil {
		return "", fmt.Errorf("write preview %s: %w", rel, err)
	}
	return rel, nil
}

// LoadAssetFile reads the content at rel. The media type is mediaType when
// given, otherwise it is detected from the bytes.
func (s *Store) LoadAssetFile(ctx context.Context, rel, mediaType string) (Content, bool) {
	data, ok := s.load(ctx, s.content, rel)
	if !ok {
		return Content{}, false
	}
	return Content{Data: data, MediaType: resolveMediaType(data, mediaType)}, true
}

// LoadPreview reads the preview at rel.
func (s *Store) LoadPreview(ctx context.Context, rel string) (Content, bool) {
	data, ok := s.load(ctx, s.previews, rel)
	if !ok {
		return Content{}, false
	}
	return Content{Data: data, MediaType: previewMediaType}, true
}

// LoadAssetFileSafely loads the content referenced by a.
func (s *Store) LoadAssetFileSafely(ctx context.Context, a domain.Asset) (Content, bool) {
	return s.LoadAssetFile(ctx, a.ContentPath, a.MediaType)
}

// LoadPreviewSafely loads the preview referenced by a, if it has one.
func (s *Store) LoadPreviewSafely(ctx context.Context, a domain.Asset) (Content, bool) {
	return s.LoadPreview(ctx, a.PreviewPath)
}

// DeleteAssetFile removes the content at rel. Failures are logged only.
func (s *Store) DeleteAssetFile(ctx context.Context, rel string) {
	s.delete(ctx, s.content, rel, "asset")
}

// DeletePreviewFile removes the preview at rel. Failures are logged only.
func (s *Store) DeletePreviewFile(ctx context.Context, rel string) {
	s.delete(ctx, s.previews, rel, "preview")
}

func (s *Store) load(ctx context.Context, backend storage.Storage, rel string) ([]byte, bool) {
	if strings.TrimSpace(rel) == "" {
		return nil, false
	}
	l := log.Ctx(ctx)

	rc, err := backend.Read(ctx, rel)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.Warn().Err(err).Str(log.FieldPath, rel).Msg("failed to open stored file")
		}
		return nil, false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldPath, rel).Msg("failed to read stored file")
		return nil, false
	}
	return data, true
}

func (s *Store) delete(ctx context.Context, backend storage.Storage, rel, kind string) {
	if strings.TrimSpace(rel) == "" {
		return
	}
	if err := backend.Delete(ctx, rel); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldPath, rel).Msgf("failed to delete %s file", kind)
	}
}

func relativePath(broadcaster, assetID, ext string) (string, error) {
	b, err := SanitizeBroadcaster(broadcaster)
	if err != nil {
		return "", err
	}
	if assetID == "" || assetID == "." || assetID == ".." || strings.ContainsAny(assetID, `/\`) {
		return "", fmt.Errorf("%w: asset id %q", ErrPathEscape, assetID)
	}
	rel, err := storage.CleanKey(b + "/" + assetID + ext)
	if err != nil {
		return "", err
	}
	return rel, nil
}

func resolveMediaType(data []byte, explicit string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if mt := mimetype.Detect(data); mt != nil && mt.String() != "" {
		return mt.String()
	}
	return domain.DefaultMediaType
}
