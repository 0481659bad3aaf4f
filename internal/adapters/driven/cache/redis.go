package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// keyPrefix namespaces correlation entries in a Redis database shared with
// other application data.
const keyPrefix = "SAML-EXT-"

// RedisCorrelationCache stores correlation entries in Redis with a per-key
// TTL, so every process instance behind a load balancer sees the same
// outstanding requests. Entries are JSON-encoded.
type RedisCorrelationCache struct {
	client redis.UniversalClient
	opts   cacheOptions
}

// NewRedisCorrelationCache creates a Redis-backed cache on the given client.
// The client owns connection pooling and timeouts; a command that exceeds
// them surfaces here as an error, never as silent success.
func NewRedisCorrelationCache(client redis.UniversalClient, opts ...CacheOption) *RedisCorrelationCache {
	return &RedisCorrelationCache{
		client: client,
		opts:   applyOptions(opts),
	}
}

func redisKey(requestID string) string {
	return keyPrefix + requestID
}

// Save extracts the request ID from the shaped XML and stores a new entry
// with the configured TTL.
func (c *RedisCorrelationCache) Save(ctx context.Context, requestXML, idpIssuer string, extraParams map[string]string) (*domain.CorrelationEntry, error) {
	requestID, err := extractRequestID(requestXML)
	if err != nil {
		return nil, err
	}

	entry := domain.CorrelationEntry{
		RequestID:               requestID,
		RequestXML:              requestXML,
		CreatedAt:               c.opts.clock.Now(),
		IDPIssuer:               idpIssuer,
		ExtraLoginRequestParams: extraParams,
	}

	payload, err := json.Marshal(&entry)
	if err != nil {
		return nil, domain.CacheWriteError("failed to encode correlation entry", err)
	}

	if err := c.client.Set(ctx, redisKey(requestID), payload, c.opts.ttl).Err(); err != nil {
		return nil, domain.CacheWriteError("failed to store correlation entry", err)
	}

	if c.opts.logger != nil {
		c.opts.logger.Debug("correlation entry saved",
			zap.String("request_id", requestID),
			zap.String("idp_issuer", idpIssuer))
	}
	return &entry, nil
}

// Get fetches an entry. A missing or expired key returns
// domain.ErrEntryNotFound; any other Redis failure is a cache read error.
func (c *RedisCorrelationCache) Get(ctx context.Context, requestID string) (*domain.CorrelationEntry, error) {
	payload, err := c.client.Get(ctx, redisKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, domain.CacheReadError("failed to fetch correlation entry", err)
	}
	return decodeEntry(payload)
}

// Remove deletes an entry. Deleting an absent key is not an error.
func (c *RedisCorrelationCache) Remove(ctx context.Context, requestID string) error {
	if err := c.client.Del(ctx, redisKey(requestID)).Err(); err != nil {
		return domain.CacheDeleteError("failed to delete correlation entry", err)
	}
	return nil
}

// Consume atomically fetches and deletes an entry via GETDEL, so two
// concurrent responses presenting the same request ID cannot both win.
func (c *RedisCorrelationCache) Consume(ctx context.Context, requestID string) (*domain.CorrelationEntry, error) {
	payload, err := c.client.GetDel(ctx, redisKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, domain.CacheReadError("failed to consume correlation entry", err)
	}
	return decodeEntry(payload)
}

func decodeEntry(payload []byte) (*domain.CorrelationEntry, error) {
	var entry domain.CorrelationEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, domain.CacheReadError("failed to decode correlation entry", err)
	}
	return &entry, nil
}

var _ ports.CorrelationCache = (*RedisCorrelationCache)(nil)
var _ ports.AtomicConsumer = (*RedisCorrelationCache)(nil)
