package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftshop/internal/model"
	"giftshop/internal/store/memstore"
)

func newCatalogService(t *testing.T) (*CatalogService, *memstore.MemStore) {
	t.Helper()
	st := memstore.New()
	svc, err := NewCatalogService(st, nil, testConfig())
	require.NoError(t, err)
	return svc, st
}

func TestCatalogService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("draft becomes an unowned asset", func(t *testing.T) {
		svc, _ := newCatalogService(t)

		asset, err := svc.Ingest(ctx, &model.AssetDraft{
			ExternalRef:  "ev-1",
			DisplayName:  "Plush Pepe",
			SerialNumber: "#1024",
			Price:        decimal.NewFromFloat(2.5),
		})
		require.NoError(t, err)
		assert.NotZero(t, asset.AssetID)
		assert.Nil(t, asset.OwnerID)
		assert.True(t, asset.Price.Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("omitted price defaults", func(t *testing.T) {
		svc, _ := newCatalogService(t)

		asset, err := svc.Ingest(ctx, &model.AssetDraft{
			ExternalRef: "ev-1",
			DisplayName: "Plush Pepe",
		})
		require.NoError(t, err)
		assert.True(t, asset.Price.Equal(decimal.NewFromFloat(1.0)))
	})

	t.Run("negative price rejected", func(t *testing.T) {
		svc, _ := newCatalogService(t)

		_, err := svc.Ingest(ctx, &model.AssetDraft{
			ExternalRef: "ev-1",
			DisplayName: "Plush Pepe",
			Price:       decimal.NewFromFloat(-1),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("redelivered event returns the existing asset", func(t *testing.T) {
		svc, st := newCatalogService(t)

		first, err := svc.Ingest(ctx, &model.AssetDraft{
			ExternalRef: "ev-1",
			DisplayName: "Plush Pepe",
		})
		require.NoError(t, err)

		second, err := svc.Ingest(ctx, &model.AssetDraft{
			ExternalRef: "ev-1",
			DisplayName: "Plush Pepe",
		})
		require.NoError(t, err)
		assert.Equal(t, first.AssetID, second.AssetID)

		assets, err := st.Catalog().List(ctx)
		require.NoError(t, err)
		assert.Len(t, assets, 1, "no duplicate purchasable asset")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc, _ := newCatalogService(t)

		_, err := svc.Ingest(ctx, &model.AssetDraft{DisplayName: "no ref"})
		assert.ErrorIs(t, err, ErrInvalidDraft)

		_, err = svc.Ingest(ctx, &model.AssetDraft{ExternalRef: "ev-1"})
		assert.ErrorIs(t, err, ErrInvalidDraft)
	})
}

func TestCatalogService_ListAssets(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogService(t)

	for _, ref := range []string{"a", "b", "c"} {
		_, err := svc.Ingest(ctx, &model.AssetDraft{ExternalRef: ref, DisplayName: "Gift " + ref})
		require.NoError(t, err)
	}

	assets, err := svc.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, "a", assets[0].ExternalRef)
	assert.Equal(t, "b", assets[1].ExternalRef)
	assert.Equal(t, "c", assets[2].ExternalRef)
}
