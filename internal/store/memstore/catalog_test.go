package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

func newAsset(id int64, ref string) *model.Asset {
	return &model.Asset{
		AssetID:     id,
		ExternalRef: ref,
		DisplayName: "Gift " + ref,
		Price:       decimal.NewFromFloat(2.5),
	}
}

func TestCatalogStore_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("list keeps insertion order", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(3, "c")))
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))
		require.NoError(t, catalog.Insert(ctx, newAsset(2, "b")))

		assets, err := catalog.List(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 3)
		assert.Equal(t, int64(3), assets[0].AssetID)
		assert.Equal(t, int64(1), assets[1].AssetID)
		assert.Equal(t, int64(2), assets[2].AssetID)
	})

	t.Run("duplicate external ref rejected", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))

		err := catalog.Insert(ctx, newAsset(2, "a"))
		assert.ErrorIs(t, err, store.ErrDuplicateAsset)
	})

	t.Run("lookup by ref", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))

		asset, err := catalog.GetByRef(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), asset.AssetID)

		_, err = catalog.GetByRef(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrAssetNotFound)
	})
}

func TestCatalogStore_ClaimOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("claim is write-once", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))

		require.NoError(t, catalog.ClaimOwner(ctx, 1, "u1"))

		err := catalog.ClaimOwner(ctx, 1, "u2")
		assert.ErrorIs(t, err, store.ErrAlreadyOwned)

		asset, err := catalog.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, asset.OwnerID)
		assert.Equal(t, "u1", *asset.OwnerID)
	})

	t.Run("claim on unknown asset", func(t *testing.T) {
		catalog := NewCatalogStore()
		err := catalog.ClaimOwner(ctx, 99, "u1")
		assert.ErrorIs(t, err, store.ErrAssetNotFound)
	})

	t.Run("concurrent claims yield exactly one owner", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))

		const claimants = 32
		var wg sync.WaitGroup
		winners := make(chan string, claimants)

		for i := 0; i < claimants; i++ {
			user := fmt.Sprintf("u%d", i)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := catalog.ClaimOwner(ctx, 1, user); err == nil {
					winners <- user
				}
			}()
		}
		wg.Wait()
		close(winners)

		require.Equal(t, 1, len(winners))
		winner := <-winners

		asset, err := catalog.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, asset.OwnerID)
		assert.Equal(t, winner, *asset.OwnerID)
	})

	t.Run("release only by the holder", func(t *testing.T) {
		catalog := NewCatalogStore()
		require.NoError(t, catalog.Insert(ctx, newAsset(1, "a")))
		require.NoError(t, catalog.ClaimOwner(ctx, 1, "u1"))

		err := catalog.ReleaseOwner(ctx, 1, "u2")
		assert.ErrorIs(t, err, store.ErrInvariantViolation)

		require.NoError(t, catalog.ReleaseOwner(ctx, 1, "u1"))

		asset, err := catalog.Get(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, asset.OwnerID)
	})
}
