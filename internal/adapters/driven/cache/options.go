package cache

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// CacheOption is a functional option for configuring correlation caches.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	ttl       time.Duration
	clock     clockwork.Clock
	logger    *zap.Logger
	onCleanup func(removed int)
}

// DefaultTTL is how long an entry outlives its request when no response
// ever arrives. It bounds the replay window and prevents unanswered
// requests from accumulating.
const DefaultTTL = 10 * time.Minute

// WithTTL returns an option that sets the entry retention period.
// Non-positive values fall back to DefaultTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) {
		o.ttl = ttl
	}
}

// WithClock returns an option that sets a custom clock for time operations.
// Used for testing entry expiry without time.Sleep.
func WithClock(clock clockwork.Clock) CacheOption {
	return func(o *cacheOptions) {
		o.clock = clock
	}
}

// WithLogger returns an option that sets the logger for cache operations.
// When set, saves, consumptions and cleanup passes are logged at debug level.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(o *cacheOptions) {
		o.logger = logger
	}
}

// WithOnCleanup returns an option that sets a callback invoked after each
// background cleanup pass with the number of entries removed. Used for
// testing synchronization.
func WithOnCleanup(fn func(removed int)) CacheOption {
	return func(o *cacheOptions) {
		o.onCleanup = fn
	}
}

func applyOptions(opts []CacheOption) cacheOptions {
	o := cacheOptions{
		ttl:   DefaultTTL,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl <= 0 {
		o.ttl = DefaultTTL
	}
	return o
}
