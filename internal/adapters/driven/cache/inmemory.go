package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// InMemoryCorrelationCache stores correlation entries in a process-local map.
// Entries are single-consumption and expire after the configured TTL.
// Suitable for single-instance deployments and tests; multi-instance
// deployments need the Redis adapter so all instances see the same entries.
type InMemoryCorrelationCache struct {
	mu      sync.Mutex
	entries map[string]inMemoryEntry

	ttl    time.Duration
	clock  clockwork.Clock
	logger *zap.Logger

	stopCleanup chan struct{}
	stopOnce    sync.Once
	onCleanup   func(removed int)
}

type inMemoryEntry struct {
	entry  domain.CorrelationEntry
	expiry time.Time
}

// NewInMemoryCorrelationCache creates an in-memory cache. Expired entries are
// evicted lazily on access; use NewInMemoryCorrelationCacheWithCleanup for a
// background sweep.
func NewInMemoryCorrelationCache(opts ...CacheOption) *InMemoryCorrelationCache {
	o := applyOptions(opts)
	return &InMemoryCorrelationCache{
		entries:   make(map[string]inMemoryEntry),
		ttl:       o.ttl,
		clock:     o.clock,
		logger:    o.logger,
		onCleanup: o.onCleanup,
	}
}

// NewInMemoryCorrelationCacheWithCleanup creates an in-memory cache with a
// background goroutine sweeping expired entries at the given interval.
// Call Close to stop the sweep.
func NewInMemoryCorrelationCacheWithCleanup(interval time.Duration, opts ...CacheOption) *InMemoryCorrelationCache {
	c := NewInMemoryCorrelationCache(opts...)
	c.stopCleanup = make(chan struct{})
	go c.cleanupLoop(interval)
	return c
}

// Close stops the background cleanup goroutine, if any.
func (c *InMemoryCorrelationCache) Close() {
	if c.stopCleanup != nil {
		c.stopOnce.Do(func() { close(c.stopCleanup) })
	}
}

func (c *InMemoryCorrelationCache) cleanupLoop(interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			removed := c.removeExpired()
			if removed > 0 && c.logger != nil {
				c.logger.Debug("correlation cache cleanup",
					zap.Int("removed", removed))
			}
			if c.onCleanup != nil {
				c.onCleanup(removed)
			}
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *InMemoryCorrelationCache) removeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for id, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Save extracts the request ID from the shaped XML and stores a new entry.
func (c *InMemoryCorrelationCache) Save(ctx context.Context, requestXML, idpIssuer string, extraParams map[string]string) (*domain.CorrelationEntry, error) {
	requestID, err := extractRequestID(requestXML)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	entry := domain.CorrelationEntry{
		RequestID:               requestID,
		RequestXML:              requestXML,
		CreatedAt:               now,
		IDPIssuer:               idpIssuer,
		ExtraLoginRequestParams: extraParams,
	}

	c.mu.Lock()
	c.entries[requestID] = inMemoryEntry{entry: entry, expiry: now.Add(c.ttl)}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("correlation entry saved",
			zap.String("request_id", requestID),
			zap.String("idp_issuer", idpIssuer))
	}
	return &entry, nil
}

// Get returns a live entry or domain.ErrEntryNotFound. Expired entries are
// evicted on the way out.
func (c *InMemoryCorrelationCache) Get(ctx context.Context, requestID string) (*domain.CorrelationEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[requestID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	if c.clock.Now().After(e.expiry) {
		delete(c.entries, requestID)
		return nil, domain.ErrEntryNotFound
	}
	entry := e.entry
	return &entry, nil
}

// Remove deletes an entry. Removing an absent ID is not an error.
func (c *InMemoryCorrelationCache) Remove(ctx context.Context, requestID string) error {
	c.mu.Lock()
	delete(c.entries, requestID)
	c.mu.Unlock()
	return nil
}

// Consume returns the entry and removes it under a single lock, so only one
// of two concurrent consumers for the same request ID can succeed.
func (c *InMemoryCorrelationCache) Consume(ctx context.Context, requestID string) (*domain.CorrelationEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[requestID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	delete(c.entries, requestID)
	if c.clock.Now().After(e.expiry) {
		return nil, domain.ErrEntryNotFound
	}
	entry := e.entry
	return &entry, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCorrelationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ ports.CorrelationCache = (*InMemoryCorrelationCache)(nil)
var _ ports.AtomicConsumer = (*InMemoryCorrelationCache)(nil)
