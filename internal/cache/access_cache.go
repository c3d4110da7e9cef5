package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/filestore/backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Grant is the cached outcome of a grant lookup for one (file, user) pair.
// Found is false when the user holds no grant on the file.
type Grant struct {
	Found       bool   `json:"found"`
	Permission  string `json:"permission,omitempty"`
	CanDownload bool   `json:"canDownload,omitempty"`
}

// AccessCache caches grant lookups in redis, keyed by the file's share
// generation. The generation lives on the file row and moves in the same
// transaction as the grants, so entries of an older generation are never
// read again whether or not Forget reached redis.
type AccessCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAccessCache(ctx context.Context, cfg config.RedisConfig) (*AccessCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewAccessCacheWithClient(client, cfg.TTL), nil
}

func NewAccessCacheWithClient(client *redis.Client, ttl time.Duration) *AccessCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AccessCache{client: client, ttl: ttl}
}

func grantsKey(fileID uuid.UUID, generation int64) string {
	return fmt.Sprintf("access:%s:%d", fileID.String(), generation)
}

func (c *AccessCache) Get(ctx context.Context, fileID, userID uuid.UUID, generation int64) (Grant, bool, error) {
	raw, err := c.client.HGet(ctx, grantsKey(fileID, generation), userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Grant{}, false, nil
	}
	if err != nil {
		return Grant{}, false, err
	}

	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return Grant{}, false, err
	}
	return grant, true, nil
}

func (c *AccessCache) Set(ctx context.Context, fileID, userID uuid.UUID, generation int64, grant Grant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return err
	}

	key := grantsKey(fileID, generation)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, userID.String(), data)
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Forget drops the entries cached under a superseded generation. Failing to
// do so only costs memory until the TTL runs out.
func (c *AccessCache) Forget(ctx context.Context, fileID uuid.UUID, generation int64) error {
	return c.client.Del(ctx, grantsKey(fileID, generation)).Err()
}

func (c *AccessCache) Close() error {
	return c.client.Close()
}
