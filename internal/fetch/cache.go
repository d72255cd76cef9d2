package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"starlift/internal/config"
	"starlift/internal/logging"
)

// PageCache stores fetched pages in Redis so re-runs against the same
// sources skip the network. Cache failures are treated as misses; the
// pipeline must work with no Redis at all.
type PageCache struct {
	client  *redis.Client
	config  *config.Config
	logger  logging.Logger
	enabled bool
}

// NewPageCache creates a page cache backed by the configured Redis
// instance. If Redis is unreachable the cache is disabled.
func NewPageCache(cfg *config.Config) *PageCache {
	logger := logging.GetGlobalLogger()

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Invalid Redis URL, page cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return &PageCache{enabled: false, logger: logger}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, page cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return &PageCache{enabled: false, logger: logger}
	}

	logger.Info("Page cache enabled", map[string]interface{}{
		"ttl": cfg.Fetch.CacheTTL.String(),
	})

	return &PageCache{
		client:  client,
		config:  cfg,
		logger:  logger,
		enabled: true,
	}
}

// Get returns the cached page for a URL, or false on a miss
func (pc *PageCache) Get(ctx context.Context, url string) (*Page, bool) {
	if pc == nil || !pc.enabled {
		return nil, false
	}

	data, err := pc.client.Get(ctx, pc.key(url)).Bytes()
	if err != nil {
		return nil, false
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		pc.logger.Debug("Discarding undecodable cache entry", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, false
	}

	return &page, true
}

// Set stores a page under its URL
func (pc *PageCache) Set(ctx context.Context, page *Page) {
	if pc == nil || !pc.enabled {
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		return
	}

	if err := pc.client.Set(ctx, pc.key(page.URL), data, pc.config.Fetch.CacheTTL).Err(); err != nil {
		pc.logger.Debug("Failed to cache page", map[string]interface{}{
			"url":   page.URL,
			"error": err.Error(),
		})
	}
}

// Close releases the Redis connection
func (pc *PageCache) Close() error {
	if pc == nil || !pc.enabled || pc.client == nil {
		return nil
	}
	return pc.client.Close()
}

func (pc *PageCache) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("starlift:page:%s", hex.EncodeToString(sum[:16]))
}
