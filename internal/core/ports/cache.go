package ports

import (
	"context"

	"github.com/mamacrowd/io-spid-commons/internal/core/domain"
)

// CorrelationCache stores one entry per outstanding AuthnRequest, keyed by
// the request ID. Implementations are adapters backed by shared storage and
// must be safe for concurrent use. No operation may block indefinitely: a
// storage timeout surfaces as an error, never as silent success.
type CorrelationCache interface {
	// Save extracts the request ID from the shaped request XML, stores an
	// entry with the current timestamp and returns it. A storage failure
	// returns a cache write error; the caller must not consider the
	// request sent if Save fails.
	Save(ctx context.Context, requestXML, idpIssuer string, extraParams map[string]string) (*domain.CorrelationEntry, error)

	// Get fetches an entry. A miss (unknown or expired ID) returns
	// domain.ErrEntryNotFound; connectivity failures return a cache read
	// error.
	Get(ctx context.Context, requestID string) (*domain.CorrelationEntry, error)

	// Remove deletes an entry. Removing an absent ID is not an error.
	Remove(ctx context.Context, requestID string) error
}

// AtomicConsumer is an optional extension of CorrelationCache: a single
// operation that reads and deletes an entry atomically, so that two
// concurrent responses presenting the same request ID cannot both consume
// it. Callers should type-assert and fall back to Get+Remove.
type AtomicConsumer interface {
	// Consume returns the entry and removes it in one step. A miss returns
	// domain.ErrEntryNotFound.
	Consume(ctx context.Context, requestID string) (*domain.CorrelationEntry, error)
}
