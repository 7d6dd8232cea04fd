package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sample-app/config"

	"github.com/redis/go-redis/v9"
)

const (
	itemsCacheKey      = "sample-app:items:list"
	itemsGenerationKey = "sample-app:items:generation"
)

// ItemCache keeps the serialized item list in Redis. Creating an item
// invalidates it, so a list read after a create always reaches the store.
//
// Invalidate also bumps a generation counter. A list read from the store is
// only written back if the generation is unchanged since before that read,
// so a read racing a create cannot put the pre-create list back.
type ItemCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewItemCache connects to Redis and verifies the connection with a short ping.
func NewItemCache(cfg config.CacheConfig) (*ItemCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return newItemCache(rdb, cfg.TTL), nil
}

func newItemCache(rdb *redis.Client, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ItemCache{rdb: rdb, ttl: ttl}
}

// GetItems returns the cached list. ok is false on a miss.
func (c *ItemCache) GetItems(ctx context.Context) (items []Item, ok bool, err error) {
	bs, err := c.rdb.Get(ctx, itemsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached items: %w", err)
	}
	if err := json.Unmarshal(bs, &items); err != nil {
		// a corrupt entry is treated as a miss and overwritten later
		return nil, false, fmt.Errorf("decode cached items: %w", err)
	}
	return items, true, nil
}

// Generation returns the current invalidation generation. Read it before
// loading the list from the store and pass it to SetItems.
func (c *ItemCache) Generation(ctx context.Context) (int64, error) {
	gen, err := generation(ctx, c.rdb)
	if err != nil {
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	return gen, nil
}

// SetItems stores the list with the configured TTL, unless the cache was
// invalidated after gen was read. A skipped write is not an error.
func (c *ItemCache) SetItems(ctx context.Context, gen int64, items []Item) error {
	bs, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemsCacheKey, bs, c.ttl)
			return nil
		})
		return err
	}, itemsGenerationKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("cache items: %w", err)
	}
}

// Invalidate drops the cached list and bumps the generation.
func (c *ItemCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, itemsGenerationKey)
		pipe.Del(ctx, itemsCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached items: %w", err)
	}
	return nil
}

var errStaleGeneration = errors.New("cache generation changed")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, c getter) (int64, error) {
	gen, err := c.Get(ctx, itemsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Close closes the Redis client.
func (c *ItemCache) Close() error {
	return c.rdb.Close()
}
