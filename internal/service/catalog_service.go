package service

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"giftshop/internal/config"
	"giftshop/internal/infrastructure/cache"
	"giftshop/internal/model"
	"giftshop/internal/store"
	"giftshop/pkg/idgen"
)

// CatalogService serves the asset catalog and accepts drafts from the
// external ingestion feed.
type CatalogService struct {
	st           store.Store
	cache        *cache.CatalogCache
	cfg          *config.Config
	defaultPrice decimal.Decimal
}

func NewCatalogService(st store.Store, catalogCache *cache.CatalogCache, cfg *config.Config) (*CatalogService, error) {
	defaultPrice, err := decimal.NewFromString(cfg.Business.DefaultAssetPrice)
	if err != nil || !defaultPrice.IsPositive() {
		return nil, errors.New("business.default_asset_price must be a positive decimal")
	}
	return &CatalogService{
		st:           st,
		cache:        catalogCache,
		cfg:          cfg,
		defaultPrice: defaultPrice,
	}, nil
}

// ListAssets returns the catalog in insertion order, read through the
// cache when one is wired.
func (s *CatalogService) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	if assets, ok := s.cache.GetList(ctx); ok {
		return assets, nil
	}

	var assets []*model.Asset
	err := retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		assets, err = s.st.Catalog().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ctx, assets)
	return assets, nil
}

func (s *CatalogService) GetAsset(ctx context.Context, assetID int64) (*model.Asset, error) {
	var asset *model.Asset
	err := retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		asset, err = s.st.Catalog().Get(ctx, assetID)
		return err
	})
	return asset, err
}

// Ingest turns a draft from the external feed into a purchasable asset.
// Redelivery of the same external reference returns the existing asset
// instead of minting a second one, so at-least-once delivery upstream
// is safe. Price defaults when the draft omits it; a negative price is
// rejected outright.
func (s *CatalogService) Ingest(ctx context.Context, draft *model.AssetDraft) (*model.Asset, error) {
	if draft.ExternalRef == "" || draft.DisplayName == "" {
		return nil, ErrInvalidDraft
	}
	if draft.Price.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if existing, err := s.st.Catalog().GetByRef(ctx, draft.ExternalRef); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrAssetNotFound) {
		return nil, err
	}

	price := draft.Price
	if price.IsZero() {
		price = s.defaultPrice
	}

	asset := &model.Asset{
		AssetID:      idgen.GenerateAssetID(),
		ExternalRef:  draft.ExternalRef,
		DisplayName:  draft.DisplayName,
		SerialNumber: draft.SerialNumber,
		Price:        price,
		ExternalLink: draft.ExternalLink,
		ImageURL:     draft.ImageURL,
	}

	err := s.st.Catalog().Insert(ctx, asset)
	if errors.Is(err, store.ErrDuplicateAsset) {
		// Lost a race against a concurrent delivery of the same event.
		return s.st.Catalog().GetByRef(ctx, draft.ExternalRef)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Printf("[Catalog] ingested: asset=%d ref=%s price=%s", asset.AssetID, asset.ExternalRef, asset.Price)
	return asset, nil
}
