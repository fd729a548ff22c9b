package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/assetstore"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/broadcaster"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/hub"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/registry"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AssetEvent
	admins []string
}

func (p *recordingPublisher) ReplicateAdmin(ctx context.Context, broadcaster, username string, granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op := "-"
	if granted {
		op = "+"
	}
	p.admins = append(p.admins, op+broadcaster+"/"+username)
}

func (p *recordingPublisher) Publish(ctx context.Context, broadcaster string, event domain.AssetEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []domain.AssetEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.AssetEvent(nil), p.events...)
}

type fakeStore struct {
	storeErr   error
	previewErr error
	deleted    []string
}

func (f *fakeStore) StoreAsset(ctx context.Context, b, id string, data []byte, mediaType string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	return b + "/" + id + ".png", nil
}

func (f *fakeStore) StorePreview(ctx context.Context, b, id string, png []byte) (string, error) {
	if f.previewErr != nil {
		return "", f.previewErr
	}
	return b + "/" + id + ".png", nil
}

func (f *fakeStore) DeleteAssetFile(ctx context.Context, rel string)   { f.deleted = append(f.deleted, "asset:"+rel) }
func (f *fakeStore) DeletePreviewFile(ctx context.Context, rel string) { f.deleted = append(f.deleted, "preview:"+rel) }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func newLocalStore(t *testing.T) (*assetstore.Store, string) {
	t.Helper()
	content, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: filepath.Join(t.TempDir(), "assets")})
	require.NoError(t, err)
	previews, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: filepath.Join(t.TempDir(), "previews")})
	require.NoError(t, err)
	return assetstore.New(content, previews), previews.GetBasePath()
}

func newTestService(store AssetStore, pub Publisher) (DirectoryService, *registry.Registry) {
	reg := registry.New()
	return NewDirectoryService(reg, store, pub, idgen.UUIDGenerator{}, PreviewOptions{MaxWidth: 64, MaxHeight: 64}), reg
}

func TestCreateAssetPublishesBeforeReturning(t *testing.T) {
	store, previewsRoot := newLocalStore(t)
	h := hub.New(8)
	sub := h.Subscribe("channel/alice")
	svc, reg := newTestService(store, broadcaster.New(h, nil, broadcaster.Config{}))

	asset, err := svc.CreateAsset(context.Background(), "Alice", domain.Upload{
		ContentType: "image/png",
		Data:        pngBytes(t, 2, 2),
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, asset.Width)
	assert.Equal(t, 2.0, asset.Height)
	assert.Equal(t, "image/png", asset.MediaType)
	assert.Equal(t, "alice", asset.Broadcaster)
	assert.Equal(t, asset.ID, asset.Name)
	assert.Zero(t, asset.X)
	assert.Zero(t, asset.Rotation)
	assert.Equal(t, "alice/"+asset.ID+".png", asset.ContentPath)
	assert.FileExists(t, filepath.Join(previewsRoot, asset.PreviewPath))

	require.Len(t, sub.C, 1)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(<-sub.C, &msg))
	assert.Equal(t, "CREATED", msg["type"])
	assert.Equal(t, asset.ID, msg["assetId"])

	stored, ok := reg.GetOrCreate("alice").Asset(asset.ID)
	require.True(t, ok)
	assert.Equal(t, asset, stored)
}

func TestCreateAssetEmitsExactlyOneEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc, reg := newTestService(&fakeStore{}, pub)

	asset, err := svc.CreateAsset(context.Background(), "alice", domain.Upload{
		Name:        "  logo ",
		ContentType: "IMAGE/PNG; charset=binary",
		Data:        pngBytes(t, 3, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, "logo", asset.Name)
	assert.Equal(t, "image/png", asset.MediaType)
	assert.Equal(t, "IMAGE/PNG; charset=binary", asset.OriginalMediaType)

	events := pub.Events()
	require.Len(t, events, 1)
	created, ok := events[0].(domain.AssetCreated)
	require.True(t, ok)
	assert.Equal(t, asset, created.Asset)
	assert.Len(t, reg.GetOrCreate("alice").Assets(), 1)
}

func TestCreateAssetInvalidImage(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{}, pub)

	_, err := svc.CreateAsset(context.Background(), "alice", domain.Upload{ContentType: "image/png", Data: []byte("nope")})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.CreateAsset(context.Background(), "alice", domain.Upload{ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrInvalidImage)

	assert.Empty(t, pub.Events())
	assert.Empty(t, svc.ListForAdmin(context.Background(), "alice"))
}

func TestCreateAssetStorageFailureRegistersNothing(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{storeErr: errors.New("disk full")}, pub)

	_, err := svc.CreateAsset(context.Background(), "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidUpload)

	assert.Empty(t, pub.Events())
	assert.Empty(t, svc.ListForAdmin(context.Background(), "alice"))
}

func TestCreateAssetUnsupportedType(t *testing.T) {
	store, _ := newLocalStore(t)
	pub := &recordingPublisher{}
	svc, _ := newTestService(store, pub)

	_, err := svc.CreateAsset(context.Background(), "alice", domain.Upload{Data: pngBytes(t, 2, 2)})
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.ErrorIs(t, err, assetstore.ErrUnsupportedMediaType)
	assert.Empty(t, pub.Events())
}

func TestCreateAssetPreviewFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{previewErr: errors.New("preview bucket missing")}, pub)

	asset, err := svc.CreateAsset(context.Background(), "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	require.NoError(t, err)
	assert.Empty(t, asset.PreviewPath)
	assert.Len(t, pub.Events(), 1)
}

func TestUpdateTransform(t *testing.T) {
	pub := &recordingPublisher{}
	svc, reg := newTestService(&fakeStore{}, pub)
	ctx := context.Background()

	_, err := svc.UpdateTransform(ctx, "alice", "missing", domain.Transform{X: 1})
	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Empty(t, pub.Events())
	assert.Empty(t, reg.GetOrCreate("alice").Assets())

	asset, err := svc.CreateAsset(ctx, "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	require.NoError(t, err)

	z := 7
	updated, err := svc.UpdateTransform(ctx, "ALICE", asset.ID, domain.Transform{X: 10, Y: -20, Width: -5, Height: 300, Rotation: 725, ZIndex: &z})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.X)
	assert.Equal(t, -5.0, updated.Width)
	assert.Equal(t, 725.0, updated.Rotation)
	assert.Equal(t, 7, *updated.ZIndex)
	assert.Equal(t, asset.CreatedAt, updated.CreatedAt)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventUpdated, events[1].Type())
}

func TestUpdateVisibilityAndListVisible(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{}, pub)
	ctx := context.Background()

	_, err := svc.UpdateVisibility(ctx, "alice", "missing", true)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	var ids []string
	for i := 0; i < 4; i++ {
		a, err := svc.CreateAsset(ctx, "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 1, 1)})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	hidden, err := svc.UpdateVisibility(ctx, "alice", ids[1], true)
	require.NoError(t, err)
	assert.True(t, hidden.Hidden)
	_, err = svc.UpdateVisibility(ctx, "alice", ids[3], true)
	require.NoError(t, err)
	_, err = svc.UpdateVisibility(ctx, "alice", ids[3], false)
	require.NoError(t, err)

	all := svc.ListForAdmin(ctx, "alice")
	visible := svc.ListVisible(ctx, "alice")
	assert.Len(t, all, 4)
	assert.Len(t, visible, 3)

	var filtered []domain.Asset
	for _, a := range all {
		if !a.Hidden {
			filtered = append(filtered, a)
		}
	}
	assert.Equal(t, filtered, visible)

	events := pub.Events()
	assert.Equal(t, domain.EventVisibility, events[len(events)-1].Type())
}

func TestDeleteAssetIsIdempotent(t *testing.T) {
	pub := &recordingPublisher{}
	store := &fakeStore{}
	svc, _ := newTestService(store, pub)
	ctx := context.Background()

	asset, err := svc.CreateAsset(ctx, "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 2, 2)})
	require.NoError(t, err)

	assert.True(t, svc.DeleteAsset(ctx, "alice", asset.ID))
	assert.False(t, svc.DeleteAsset(ctx, "alice", asset.ID))

	events := pub.Events()
	require.Len(t, events, 2)
	deleted, ok := events[1].(domain.AssetDeleted)
	require.True(t, ok)
	assert.Equal(t, asset.ID, deleted.ID)
	assert.Equal(t, []string{"asset:" + asset.ContentPath, "preview:" + asset.PreviewPath}, store.deleted)

	_, err = svc.GetAsset(ctx, "alice", asset.ID)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestAdminPassthrough(t *testing.T) {
	svc, _ := newTestService(&fakeStore{}, &recordingPublisher{})
	ctx := context.Background()

	assert.True(t, svc.AddAdmin(ctx, "Alice", "bob"))
	assert.False(t, svc.AddAdmin(ctx, "alice", "BOB"))
	assert.True(t, svc.CanManage("alice", "Bob"))
	assert.True(t, svc.IsBroadcaster("alice", "ALICE"))
	assert.Equal(t, []string{"alice"}, svc.AdminChannelsFor(ctx, "bob"))
	assert.Equal(t, []string{"bob"}, svc.Admins(ctx, "alice"))

	assert.True(t, svc.RemoveAdmin(ctx, "alice", "bob"))
	assert.False(t, svc.CanManage("alice", "bob"))
	assert.False(t, svc.RemoveAdmin(ctx, "alice", "bob"))
}

func TestAdminChangesAreReplicatedOnce(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{}, pub)
	ctx := context.Background()

	svc.AddAdmin(ctx, "alice", "bob")
	svc.AddAdmin(ctx, "alice", "bob")
	svc.RemoveAdmin(ctx, "alice", "bob")
	svc.RemoveAdmin(ctx, "alice", "bob")

	assert.Equal(t, []string{"+alice/bob", "-alice/bob"}, pub.admins)
	assert.Empty(t, pub.Events())
}

func TestConcurrentTransformsPublishInApplyOrder(t *testing.T) {
	pub := &recordingPublisher{}
	svc, reg := newTestService(&fakeStore{}, pub)
	ctx := context.Background()

	asset, err := svc.CreateAsset(ctx, "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 1, 1)})
	require.NoError(t, err)

	const writers = 32
	var wg sync.WaitGroup
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(x float64) {
			defer wg.Done()
			_, err := svc.UpdateTransform(ctx, "alice", asset.ID, domain.Transform{X: x, Width: 1, Height: 1})
			assert.NoError(t, err)
		}(float64(i))
	}
	wg.Wait()

	events := pub.Events()
	require.Len(t, events, writers+1)
	last, ok := events[len(events)-1].(domain.AssetUpdated)
	require.True(t, ok)

	stored, ok := reg.GetOrCreate("alice").Asset(asset.ID)
	require.True(t, ok)
	assert.Equal(t, stored.X, last.Asset.X)
}

func TestDeleteRacingTransformNeverFollowsDeleted(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeStore{}, pub)
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		asset, err := svc.CreateAsset(ctx, "alice", domain.Upload{ContentType: "image/png", Data: pngBytes(t, 1, 1)})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.DeleteAsset(ctx, "alice", asset.ID)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.UpdateTransform(ctx, "alice", asset.ID, domain.Transform{X: 1})
		}()
		wg.Wait()
	}

	deleted := make(map[string]bool)
	for _, e := range pub.Events() {
		if deleted[e.AssetID()] {
			t.Fatalf("event %s for %s published after its deletion", e.Type(), e.AssetID())
		}
		if e.Type() == domain.EventDeleted {
			deleted[e.AssetID()] = true
		}
	}
}

func TestNormalizeMediaType(t *testing.T) {
	tests := []struct {
		in, want, original string
	}{
		{"", domain.DefaultMediaType, domain.DefaultMediaType},
		{"image/png", "image/png", "image/png"},
		{"Image/JPEG; q=1", "image/jpeg", "Image/JPEG; q=1"},
		{"image/png;;bad", "image/png", "image/png;;bad"},
	}
	for _, tt := range tests {
		got, original := normalizeMediaType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.original, original, tt.in)
	}
}
