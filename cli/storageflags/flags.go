// Package storageflags configures the segment store engine and its
// read-through cache.
package storageflags

import (
	"context"
	"flag"
	"strconv"
	"time"

	"github.com/brimdata/airindex/pkg/storage"
	"github.com/brimdata/airindex/pkg/storage/cache"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type Flags struct {
	Kind cache.Kind
	// LocalCacheSize is the number of reads of sealed objects kept in the
	// local LRU cache.
	LocalCacheSize int
	RedisAddr      string
	// RedisKeyExpiration is the expiration value used when creating keys.
	// A value of zero (meaning no expiration) should only be used when
	// Redis is configured with a key eviction policy.
	RedisKeyExpiration time.Duration
	S3Endpoint         string
	S3Region           string
	S3PathStyle        bool

	rclient  *redis.Client
	counting *storage.Counting
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.Kind = cache.KindLocal
	fs.Var(&f.Kind, "cache.kind", "kind of sealed object cache (values: none, local, redis)")
	fs.IntVar(&f.LocalCacheSize, "cache.local.size", 4096, "number of reads to keep in local cache")
	fs.StringVar(&f.RedisAddr, "cache.redis.addr", "localhost:6379", "address of redis server")
	fs.DurationVar(&f.RedisKeyExpiration, "cache.redis.keyexpiry", time.Hour*24, "expiration duration of cached keys")
	fs.StringVar(&f.S3Endpoint, "s3.endpoint", "", "S3 endpoint URL")
	fs.StringVar(&f.S3Region, "s3.region", "", "S3 region")
	fs.BoolVar(&f.S3PathStyle, "s3.pathstyle", false, "use path-style S3 addressing")
}

func (f *Flags) props() map[string]string {
	props := map[string]string{
		"path_style": strconv.FormatBool(f.S3PathStyle),
	}
	if f.S3Endpoint != "" {
		props["endpoint"] = f.S3Endpoint
	}
	if f.S3Region != "" {
		props["region"] = f.S3Region
	}
	return props
}

// Open returns an engine for all supported URI schemes.  Unless noCache
// is set, reads of sealed objects go through the configured cache.
func (f *Flags) Open(ctx context.Context, noCache bool, reg prometheus.Registerer) (storage.Engine, error) {
	router := storage.NewLocalEngine()
	if err := router.Open(ctx, f.props()); err != nil {
		return nil, err
	}
	f.counting = storage.NewCounting(router)
	var engine storage.Engine = f.counting
	if noCache {
		return engine, nil
	}
	switch f.Kind {
	case cache.KindLocal:
		c, err := cache.NewLocalCache(engine, cache.ExceptHead, f.LocalCacheSize, reg)
		if err != nil {
			return nil, multierr.Append(err, engine.Close())
		}
		return c, nil
	case cache.KindRedis:
		f.rclient = redis.NewClient(&redis.Options{Addr: f.RedisAddr})
		if err := f.rclient.Ping(ctx).Err(); err != nil {
			return nil, multierr.Combine(err, f.rclient.Close(), engine.Close())
		}
		return cache.NewRedisCache(engine, f.rclient, cache.ExceptHead, f.RedisKeyExpiration, reg), nil
	}
	return engine, nil
}

// Counts returns the calls that reached the storage backend, i.e., those
// not served by the cache, since Open.
func (f *Flags) Counts() storage.Counts {
	if f.counting == nil {
		return storage.Counts{}
	}
	return f.counting.Counts()
}

// Close releases the Redis client, if any.
func (f *Flags) Close() error {
	if f.rclient == nil {
		return nil
	}
	return f.rclient.Close()
}
