package blob

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const urlKeyPrefix = "blob:url:" // blob:url:{path} -> signed URL

// URLCache remembers signed download URLs in Redis for a TTL shorter than the
// signature lifetime, so listing pages do not re-sign every cover on every
// load. Cache failures fall through to the wrapped store.
type URLCache struct {
	Store
	client *redis.Client
	ttl    time.Duration
	log    logger.Log
}

func NewURLCache(l logger.Log, inner Store, client *redis.Client, ttl time.Duration) *URLCache {
	return &URLCache{Store: inner, client: client, ttl: ttl, log: l}
}

func (c *URLCache) DownloadURL(ctx context.Context, path string) (string, error) {
	key := urlKeyPrefix + path
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.ErrorErr("URLCache: failed to read cached URL", err, "path", path)
	}

	u, err := c.Store.DownloadURL(ctx, path)
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, u, c.ttl).Err(); err != nil {
		c.log.ErrorErr("URLCache: failed to cache URL", err, "path", path)
	}
	return u, nil
}

// Upload replaces the object and drops its cached URL.
func (c *URLCache) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if err := c.Store.Upload(ctx, path, r, size, contentType); err != nil {
		return err
	}
	if err := c.client.Del(ctx, urlKeyPrefix+path).Err(); err != nil {
		c.log.ErrorErr("URLCache: failed to invalidate cached URL", err, "path", path)
	}
	return nil
}
