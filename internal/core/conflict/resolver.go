package conflict

import (
	"context"
	sc "sync"
	"time"
)

// ResolverRegistry maps conflict types to the external resolver callbacks
// supplied by the replication engine.
type ResolverRegistry struct {
	mu        sc.RWMutex
	resolvers map[string]ResolverFunc
}

func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{
		resolvers: make(map[string]ResolverFunc),
	}
}

// Register installs the resolver for a conflict type, replacing any
// previous one.
func (r *ResolverRegistry) Register(conflictType string, fn ResolverFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[conflictType] = fn
}

func (r *ResolverRegistry) lookup(conflictType string) (ResolverFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.resolvers[conflictType]
	return fn, ok
}

// Resolve dispatches a same-type group to its resolver. Groups without a
// registered resolver are flagged for manual intervention instead of
// failing the flush.
func (r *ResolverRegistry) Resolve(ctx context.Context, conflictType string, records []Record) Resolution {
	fn, ok := r.lookup(conflictType)
	if !ok {
		return Resolution{Strategy: "manual", Manual: true, Err: ErrNoResolver}
	}

	start := time.Now()
	strategy, err := fn(ctx, records)
	return Resolution{
		Strategy: strategy,
		Duration: time.Since(start),
		Err:      err,
	}
}
