package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/pkg/types/listing"
)

// metadataKeyspace namespaces cached listing metadata under the
// configured key prefix.
const metadataKeyspace = "metadata:"

// MetadataCache stores fetched listing metadata in Redis so repeated
// scoring of the same URL skips the live fetch.  Cache errors are
// absorbed: a failed read is a miss, a failed write is a log line.
type MetadataCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewMetadataCache constructs a MetadataCache over an existing client.
func NewMetadataCache(client *redis.Client, cfg config.RedisConfig, logger logging.Logger) *MetadataCache {
	return &MetadataCache{
		client: client,
		prefix: cfg.KeyPrefix + metadataKeyspace,
		ttl:    cfg.DefaultTTL,
		logger: logger.Named("metadata_cache"),
	}
}

// Get returns the cached metadata for a listing URL.
func (c *MetadataCache) Get(ctx context.Context, key string) (listing.Metadata, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("metadata cache read failed", logging.Err(err))
		}
		return listing.Metadata{}, false
	}

	var meta listing.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		c.logger.Warn("metadata cache entry unparseable", logging.Err(err))
		return listing.Metadata{}, false
	}
	return meta, true
}

// Set stores metadata for a listing URL with the configured TTL.
func (c *MetadataCache) Set(ctx context.Context, key string, meta listing.Metadata) {
	raw, err := json.Marshal(meta)
	if err != nil {
		c.logger.Warn("metadata cache encode failed", logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("metadata cache write failed", logging.Err(err))
	}
}
