package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"giftshop/internal/config"
	"giftshop/internal/model"
)

const catalogListKey = "giftshop:catalog:list"

// InitRedis connects or dies.
func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	log.Println("Redis connected")
	return client
}

// CatalogCache is a read-through cache for the asset list, invalidated
// whenever an asset is ingested or claimed. A nil *CatalogCache is a
// valid no-op cache, which is what the tests and the memory driver use.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// GetList returns the cached asset list and whether it was present.
// Cache trouble is treated as a miss; the store is the source of truth.
func (c *CatalogCache) GetList(ctx context.Context) ([]*model.Asset, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, catalogListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CatalogCache] get failed: %v", err)
		}
		return nil, false
	}

	var assets []*model.Asset
	if err := json.Unmarshal(raw, &assets); err != nil {
		log.Printf("[CatalogCache] corrupt payload, dropping: %v", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return assets, true
}

func (c *CatalogCache) SetList(ctx context.Context, assets []*model.Asset) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(assets)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, catalogListKey, raw, c.ttl).Err(); err != nil {
		log.Printf("[CatalogCache] set failed: %v", err)
	}
}

func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, catalogListKey).Err(); err != nil {
		log.Printf("[CatalogCache] invalidate failed: %v", err)
	}
}
