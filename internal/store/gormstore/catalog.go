package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

// CatalogStore keeps the asset records. Ownership assignment is a
// conditional UPDATE on `owner_id IS NULL`, so two racing claims on
// the same asset resolve inside the database: one row affected for the
// winner, zero for everyone else.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) List(ctx context.Context) ([]*model.Asset, error) {
	var assets []*model.Asset
	err := s.db.WithContext(ctx).Order("asset_id ASC").Find(&assets).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return assets, nil
}

func (s *CatalogStore) Get(ctx context.Context, assetID int64) (*model.Asset, error) {
	var asset model.Asset
	err := s.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAssetNotFound
		}
		return nil, wrapStorage(err)
	}
	return &asset, nil
}

func (s *CatalogStore) GetByRef(ctx context.Context, externalRef string) (*model.Asset, error) {
	var asset model.Asset
	err := s.db.WithContext(ctx).Where("external_ref = ?", externalRef).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAssetNotFound
		}
		return nil, wrapStorage(err)
	}
	return &asset, nil
}

func (s *CatalogStore) Insert(ctx context.Context, asset *model.Asset) error {
	err := s.db.WithContext(ctx).Create(asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicateAsset
		}
		return wrapStorage(err)
	}
	return nil
}

func (s *CatalogStore) ClaimOwner(ctx context.Context, assetID int64, userID string) error {
	result := s.db.WithContext(ctx).Model(&model.Asset{}).
		Where("asset_id = ? AND owner_id IS NULL", assetID).
		Update("owner_id", userID)
	if result.Error != nil {
		return wrapStorage(result.Error)
	}

	if result.RowsAffected == 0 {
		asset, err := s.Get(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.Owned() {
			return store.ErrAlreadyOwned
		}
		// Row exists and is unowned yet the CAS matched nothing.
		return fmt.Errorf("%w: claim on asset %d matched no row", store.ErrInvariantViolation, assetID)
	}

	return nil
}

func (s *CatalogStore) ReleaseOwner(ctx context.Context, assetID int64, userID string) error {
	result := s.db.WithContext(ctx).Model(&model.Asset{}).
		Where("asset_id = ? AND owner_id = ?", assetID, userID).
		Update("owner_id", nil)
	if result.Error != nil {
		return wrapStorage(result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, assetID); err != nil {
			return err
		}
		return fmt.Errorf("%w: release of asset %d not held by %s", store.ErrInvariantViolation, assetID, userID)
	}

	return nil
}
