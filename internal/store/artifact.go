// Package store persists rendered screenshot artifacts keyed by the
// deterministic cache key. The store owns eviction; this service only
// reads and (idempotently) writes.
package store

import (
	"context"
	"time"
)

// Artifact is a rendered screenshot plus the immutable metadata written
// alongside it. Written once per key (overwrite permitted, writes are
// idempotent), read many times.
type Artifact struct {
	Data         []byte
	ContentType  string
	CacheControl string

	// Echoed request fields, kept so cache hits can reproduce the
	// diagnostic headers of the original response.
	TargetURL string
	Version   string
	Width     string
	Height    string

	GeneratedAt time.Time
}

// Store is the injected cache capability.
//
// Contract:
//   - Implementations must be safe for concurrent use.
//   - Get returns (nil, false, nil) on miss; an error means the lookup
//     itself failed and the caller should treat the key as a miss.
//   - Put is idempotent: concurrent writes under the same key are safe.
type Store interface {
	Get(ctx context.Context, key string) (*Artifact, bool, error)
	Put(ctx context.Context, key string, artifact *Artifact) error
}
