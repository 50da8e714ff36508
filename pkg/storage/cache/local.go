package cache

import (
	"context"

	"github.com/brimdata/airindex/pkg/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type LocalCache struct {
	engine
}

var _ storage.Engine = (*LocalCache)(nil)

// NewLocalCache returns an engine that keeps up to size reads of sealed
// objects in an in-process LRU cache.
func NewLocalCache(e storage.Engine, cacheable Cacheable, size int, reg prometheus.Registerer) (*LocalCache, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		engine: engine{
			Engine:    e,
			metrics:   newMetrics(reg),
			store:     &lruStore{c},
			cacheable: cacheable,
		},
	}, nil
}

type lruStore struct {
	lru *lru.Cache[string, []byte]
}

func (l *lruStore) get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := l.lru.Get(key)
	return b, ok, nil
}

func (l *lruStore) put(_ context.Context, key string, b []byte) error {
	l.lru.Add(key, b)
	return nil
}
