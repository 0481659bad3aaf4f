package spid

import (
	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/cache"
	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// Re-export correlation types and ports
type CorrelationEntry = domain.CorrelationEntry
type UserProfile = domain.UserProfile
type CorrelationCache = ports.CorrelationCache
type AtomicConsumer = ports.AtomicConsumer

// Re-export cache adapters and options
type CacheOption = cache.CacheOption
type InMemoryCorrelationCache = cache.InMemoryCorrelationCache
type RedisCorrelationCache = cache.RedisCorrelationCache

var (
	NewInMemoryCorrelationCache            = cache.NewInMemoryCorrelationCache
	NewInMemoryCorrelationCacheWithCleanup = cache.NewInMemoryCorrelationCacheWithCleanup
	NewRedisCorrelationCache               = cache.NewRedisCorrelationCache
	WithTTL                                = cache.WithTTL
	WithClock                              = cache.WithClock
	WithLogger                             = cache.WithLogger
	WithOnCleanup                          = cache.WithOnCleanup
)

// DefaultCacheTTL is the default correlation entry retention period.
const DefaultCacheTTL = cache.DefaultTTL
