package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonwraymond/collabd/cache"
)

// writeBackTimeout bounds the detached cache write after a store hit.
const writeBackTimeout = 2 * time.Second

// Resolver resolves a principal identifier to a principal record,
// cache-first with a durable-directory fallback.
//
// The cache is a derived, disposable view: a miss (including a
// deserialization failure) falls through to the directory, and a directory
// hit is written back best-effort without blocking the caller. Concurrent
// resolutions of the same uncached principal may each write the entry;
// last-writer-wins is benign since the values are equivalent.
type Resolver struct {
	cache  cache.Cache
	dir    Directory
	ttl    time.Duration
	logger *slog.Logger
}

// NewResolver creates a Resolver. ttl is the cache entry lifetime applied on
// write-back; a non-positive ttl disables write-back entirely.
func NewResolver(c cache.Cache, dir Directory, ttl time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: c, dir: dir, ttl: ttl, logger: logger}
}

// Resolve returns the principal for the given identifier, or (nil, nil) when
// no record exists. Only the directory lookup can produce an error; cache
// failures degrade to misses.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Principal, error) {
	key := cache.PrincipalKey(id)

	if data, ok := r.cache.Get(ctx, key); ok {
		p := &Principal{}
		if err := json.Unmarshal(data, p); err == nil {
			return p, nil
		}
		// Undecodable entry: treat as a miss and let the write-back below
		// overwrite it.
	}

	p, err := r.dir.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if r.ttl > 0 {
		r.writeBack(ctx, key, p)
	}
	return p, nil
}

// Invalidate drops the cached entry for the given identifier. Exposed for
// callers that mutate principals; the resolution path itself never calls it.
func (r *Resolver) Invalidate(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, cache.PrincipalKey(id))
}

// writeBack stores the principal snapshot without blocking the request.
// The goroutine detaches from the request context so an aborted caller
// cannot leave the cache half-written mid-operation.
func (r *Resolver) writeBack(ctx context.Context, key string, p *Principal) {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn("principal snapshot not serializable", "key", key, "error", err)
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, writeBackTimeout)
		defer cancel()
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("principal cache write failed", "key", key, "error", err)
		}
	}()
}
