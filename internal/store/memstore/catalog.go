package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

type CatalogStore struct {
	mu    sync.Mutex
	byID  map[int64]*model.Asset
	byRef map[string]int64
	order []int64 // insertion order for List
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		byID:  make(map[int64]*model.Asset),
		byRef: make(map[string]int64),
	}
}

func (s *CatalogStore) List(ctx context.Context) ([]*model.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assets := make([]*model.Asset, 0, len(s.order))
	for _, id := range s.order {
		assets = append(assets, s.copyOf(s.byID[id]))
	}
	return assets, nil
}

func (s *CatalogStore) Get(ctx context.Context, assetID int64) (*model.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.byID[assetID]
	if !ok {
		return nil, store.ErrAssetNotFound
	}
	return s.copyOf(asset), nil
}

func (s *CatalogStore) GetByRef(ctx context.Context, externalRef string) (*model.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byRef[externalRef]
	if !ok {
		return nil, store.ErrAssetNotFound
	}
	return s.copyOf(s.byID[id]), nil
}

func (s *CatalogStore) Insert(ctx context.Context, asset *model.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[asset.AssetID]; ok {
		return store.ErrDuplicateAsset
	}
	if _, ok := s.byRef[asset.ExternalRef]; ok {
		return store.ErrDuplicateAsset
	}

	clone := s.copyOf(asset)
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = clone.CreatedAt
	s.byID[clone.AssetID] = clone
	s.byRef[clone.ExternalRef] = clone.AssetID
	s.order = append(s.order, clone.AssetID)
	return nil
}

func (s *CatalogStore) ClaimOwner(ctx context.Context, assetID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.byID[assetID]
	if !ok {
		return store.ErrAssetNotFound
	}
	if asset.Owned() {
		return store.ErrAlreadyOwned
	}

	owner := userID
	asset.OwnerID = &owner
	asset.UpdatedAt = time.Now()
	return nil
}

func (s *CatalogStore) ReleaseOwner(ctx context.Context, assetID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.byID[assetID]
	if !ok {
		return store.ErrAssetNotFound
	}
	if asset.OwnerID == nil || *asset.OwnerID != userID {
		return fmt.Errorf("%w: release of asset %d not held by %s", store.ErrInvariantViolation, assetID, userID)
	}

	asset.OwnerID = nil
	asset.UpdatedAt = time.Now()
	return nil
}

func (s *CatalogStore) copyOf(asset *model.Asset) *model.Asset {
	clone := *asset
	if asset.OwnerID != nil {
		owner := *asset.OwnerID
		clone.OwnerID = &owner
	}
	return &clone
}
