package service

import (
	"context"
	"errors"
	"strings"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/audit"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/repository"
)

var (
	ErrScriptAssetNotFound = errors.New("script asset not found")
	ErrInvalidScript       = errors.New("script name and source are required")
)

// scriptAssetServiceImpl implements ScriptAssetService interface.
type scriptAssetServiceImpl struct {
	repo repository.ScriptAssetRepository
	ids  idgen.Generator
}

// NewScriptAssetService creates a new script asset service.
func NewScriptAssetService(repo repository.ScriptAssetRepository, ids idgen.Generator) ScriptAssetService {
	return &scriptAssetServiceImpl{repo: repo, ids: ids}
}

func (s *scriptAssetServiceImpl) List(ctx context.Context, broadcaster string) ([]domain.ScriptAsset, error) {
	return s.repo.ListByBroadcaster(ctx, strings.ToLower(broadcaster))
}

func (s *scriptAssetServiceImpl) Get(ctx context.Context, broadcaster, id string) (*domain.ScriptAsset, error) {
	if !s.ids.Validate(id) {
		return nil, ErrScriptAssetNotFound
	}
	asset, err := s.repo.GetByID(ctx, strings.ToLower(broadcaster), id)
	if err != nil {
		return nil, mapScriptErr(err)
	}
	return asset, nil
}

// Create stores a new code asset.
func (s *scriptAssetServiceImpl) Create(ctx context.Context, broadcaster string, req *domain.CodeAssetRequest) (*domain.ScriptAsset, error) {
	name, source, err := validateScript(req)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.Generate()
	if err != nil {
		return nil, err
	}

	asset := &domain.ScriptAsset{
		ID:                id,
		Broadcaster:       strings.ToLower(broadcaster),
		Name:              name,
		Source:            source,
		MediaType:         domain.ScriptMediaType,
		OriginalMediaType: domain.ScriptMediaType,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateScript, asset.Broadcaster, asset.ID, "script asset created")
	return asset, nil
}

// Update replaces the name and source of a code asset.
func (s *scriptAssetServiceImpl) Update(ctx context.Context, broadcaster, id string, req *domain.CodeAssetRequest) (*domain.ScriptAsset, error) {
	name, source, err := validateScript(req)
	if err != nil {
		return nil, err
	}

	asset, err := s.Get(ctx, broadcaster, id)
	if err != nil {
		return nil, err
	}
	asset.Name = name
	asset.Source = source

	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, mapScriptErr(err)
	}

	audit.Log(ctx, audit.ActionUpdateScript, asset.Broadcaster, asset.ID, "script asset updated")
	return asset, nil
}

func (s *scriptAssetServiceImpl) Delete(ctx context.Context, broadcaster, id string) error {
	if !s.ids.Validate(id) {
		return ErrScriptAssetNotFound
	}
	b := strings.ToLower(broadcaster)
	if err := s.repo.Delete(ctx, b, id); err != nil {
		return mapScriptErr(err)
	}
	audit.Log(ctx, audit.ActionDeleteScript, b, id, "script asset deleted")
	return nil
}

func validateScript(req *domain.CodeAssetRequest) (string, string, error) {
	if req == nil {
		return "", "", ErrInvalidScript
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Source) == "" {
		return "", "", ErrInvalidScript
	}
	return name, req.Source, nil
}

func mapScriptErr(err error) error {
	if errors.Is(err, repository.ErrScriptAssetNotFound) {
		return ErrScriptAssetNotFound
	}
	return err
}
