package cache

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/brimdata/airindex/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExceptHead is a Cacheable that admits everything but HEAD objects,
// which are rewritten each time an index is published.
func ExceptHead(u *storage.URI) bool {
	return path.Base(u.Path) != "HEAD"
}

type metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return metrics{
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airindex_cache_hits_total",
				Help: "Number of hits for a cache lookup.",
			},
			[]string{"op"},
		),
		misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airindex_cache_misses_total",
				Help: "Number of misses for a cache lookup.",
			},
			[]string{"op"},
		),
	}
}

// store is the key/value half of a cache.
type store interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, b []byte) error
}

// engine wraps a storage.Engine with a read-through store.  Writes pass
// through untouched.
type engine struct {
	storage.Engine
	metrics
	store     store
	cacheable Cacheable
	sealed    sync.Map
}

func (e *engine) isSealed(ctx context.Context, u *storage.URI) (bool, error) {
	key := u.String()
	if _, ok := e.sealed.Load(key); ok {
		return true, nil
	}
	props, err := e.Engine.GetProps(ctx, u)
	if err != nil {
		return false, err
	}
	if props.Sealed {
		e.sealed.Store(key, struct{}{})
	}
	return props.Sealed, nil
}

func (e *engine) read(ctx context.Context, u *storage.URI, op, key string, load func() ([]byte, error)) ([]byte, error) {
	if e.cacheable != nil && !e.cacheable(u) {
		return load()
	}
	if b, ok, err := e.store.get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		e.hits.WithLabelValues(op).Inc()
		return b, nil
	}
	e.misses.WithLabelValues(op).Inc()
	sealed, err := e.isSealed(ctx, u)
	if err != nil {
		return nil, err
	}
	b, err := load()
	if err != nil || !sealed {
		return b, err
	}
	return b, e.store.put(ctx, key, b)
}

func (e *engine) ReadAll(ctx context.Context, u *storage.URI) ([]byte, error) {
	return e.read(ctx, u, "all", u.String(), func() ([]byte, error) {
		return e.Engine.ReadAll(ctx, u)
	})
}

func (e *engine) ReadRange(ctx context.Context, u *storage.URI, offset, length int64) ([]byte, error) {
	key := fmt.Sprintf("%s@%d+%d", u, offset, length)
	return e.read(ctx, u, "range", key, func() ([]byte, error) {
		return e.Engine.ReadRange(ctx, u, offset, length)
	})
}

func (e *engine) Remove(ctx context.Context, u *storage.URI) error {
	e.sealed.Delete(u.String())
	return e.Engine.Remove(ctx, u)
}
