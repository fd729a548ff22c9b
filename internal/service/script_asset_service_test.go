package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/repository"
)

type fakeScriptRepo struct {
	assets map[string]domain.ScriptAsset
}

func newFakeScriptRepo() *fakeScriptRepo {
	return &fakeScriptRepo{assets: make(map[string]domain.ScriptAsset)}
}

func (r *fakeScriptRepo) Create(ctx context.Context, a *domain.ScriptAsset) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.assets[a.ID] = *a
	return nil
}

func (r *fakeScriptRepo) GetByID(ctx context.Context, broadcaster, id string) (*domain.ScriptAsset, error) {
	a, ok := r.assets[id]
	if !ok || a.Broadcaster != broadcaster {
		return nil, repository.ErrScriptAssetNotFound
	}
	return &a, nil
}

func (r *fakeScriptRepo) ListByBroadcaster(ctx context.Context, broadcaster string) ([]domain.ScriptAsset, error) {
	var out []domain.ScriptAsset
	for _, a := range r.assets {
		if a.Broadcaster == broadcaster {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeScriptRepo) Update(ctx context.Context, a *domain.ScriptAsset) error {
	if _, ok := r.assets[a.ID]; !ok {
		return repository.ErrScriptAssetNotFound
	}
	r.assets[a.ID] = *a
	return nil
}

func (r *fakeScriptRepo) Delete(ctx context.Context, broadcaster, id string) error {
	a, ok := r.assets[id]
	if !ok || a.Broadcaster != broadcaster {
		return repository.ErrScriptAssetNotFound
	}
	delete(r.assets, id)
	return nil
}

func TestScriptAssetLifecycle(t *testing.T) {
	repo := newFakeScriptRepo()
	svc := NewScriptAssetService(repo, idgen.UUIDGenerator{})
	ctx := context.Background()

	created, err := svc.Create(ctx, "Alice", &domain.CodeAssetRequest{Name: " confetti ", Source: "burst()"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Broadcaster)
	assert.Equal(t, "confetti", created.Name)
	assert.Equal(t, domain.ScriptMediaType, created.MediaType)

	got, err := svc.Get(ctx, "ALICE", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "burst()", got.Source)

	updated, err := svc.Update(ctx, "alice", created.ID, &domain.CodeAssetRequest{Name: "rain", Source: "drop()"})
	require.NoError(t, err)
	assert.Equal(t, "rain", updated.Name)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "drop()", list[0].Source)

	require.NoError(t, svc.Delete(ctx, "alice", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "alice", created.ID), ErrScriptAssetNotFound)
}

func TestScriptAssetValidation(t *testing.T) {
	svc := NewScriptAssetService(newFakeScriptRepo(), idgen.UUIDGenerator{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", &domain.CodeAssetRequest{Name: "  ", Source: "x"})
	assert.ErrorIs(t, err, ErrInvalidScript)
	_, err = svc.Create(ctx, "alice", &domain.CodeAssetRequest{Name: "x", Source: ""})
	assert.ErrorIs(t, err, ErrInvalidScript)
	_, err = svc.Create(ctx, "alice", nil)
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestScriptAssetScopedToBroadcaster(t *testing.T) {
	svc := NewScriptAssetService(newFakeScriptRepo(), idgen.UUIDGenerator{})
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", &domain.CodeAssetRequest{Name: "a", Source: "b"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "mallory", created.ID)
	assert.ErrorIs(t, err, ErrScriptAssetNotFound)
	_, err = svc.Update(ctx, "mallory", created.ID, &domain.CodeAssetRequest{Name: "x", Source: "y"})
	assert.ErrorIs(t, err, ErrScriptAssetNotFound)
	_, err = svc.Get(ctx, "alice", "../not-an-id")
	assert.ErrorIs(t, err, ErrScriptAssetNotFound)
}
