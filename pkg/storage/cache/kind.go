// Package cache contains read-through caches for sealed segment objects.
// Sealed objects never change, so a cached range stays valid for the
// lifetime of the object.
package cache

import (
	"fmt"

	"github.com/brimdata/airindex/pkg/storage"
)

// Cacheable reports whether reads of a URI may be cached at all.  Objects
// that pass are still cached only once they are sealed.
type Cacheable func(*storage.URI) bool

type Kind string

const (
	KindNone  Kind = "none"
	KindLocal Kind = "local"
	KindRedis Kind = "redis"
)

func (k *Kind) Set(s string) error {
	switch s {
	case "none", "":
		*k = KindNone
	case "local":
		*k = KindLocal
	case "redis":
		*k = KindRedis
	default:
		return fmt.Errorf("unknown cache kind: %q", s)
	}
	return nil
}

func (k Kind) String() string {
	if k == "" {
		return string(KindNone)
	}
	return string(k)
}
