package storageflags

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/brimdata/airindex/pkg/storage"
	"github.com/brimdata/airindex/pkg/storage/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-cache.local.size", "8", "-s3.region", "us-west-2"}))
	assert.Equal(t, cache.KindLocal, f.Kind)
	assert.Equal(t, "us-west-2", f.props()["region"])

	ctx := context.Background()
	engine, err := f.Open(ctx, false, prometheus.NewRegistry())
	require.NoError(t, err)
	_, ok := engine.(*cache.LocalCache)
	assert.True(t, ok)

	u := storage.MustParseURI(filepath.Join(t.TempDir(), "obj"))
	require.NoError(t, engine.WriteAll(ctx, u, []byte("abc")))
	b, err := engine.ReadRange(ctx, u, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "bc", string(b))
	assert.Equal(t, storage.Counts{Reads: 1, ReadBytes: 2, Writes: 1}, f.Counts())
	require.NoError(t, engine.Close())
	require.NoError(t, f.Close())

	engine, err = f.Open(ctx, true, prometheus.NewRegistry())
	require.NoError(t, err)
	_, ok = engine.(*storage.Counting)
	assert.True(t, ok)
}
