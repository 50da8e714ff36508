package build_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brimdata/airindex/cmd/airindex/build"
	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/lookup"
	"github.com/brimdata/airindex/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&sb, "%d,%d\n", i*i+7, i)
	}
	require.NoError(t, os.WriteFile(data, []byte(sb.String()), 0644))
	db := filepath.Join(dir, "db")

	root.Airindex.Add(build.Cmd)
	err := root.Airindex.ExecRoot([]string{
		"-log.path", "/dev/null",
		"build", "-db", db, "-blocksize", "1KiB", "-drafters", "band_greedy,step",
		"-affine_latency_ns", "1000000", "-affine_bandwidth_mbps", "100",
		data,
	})
	require.NoError(t, err)

	ctx := context.Background()
	index, err := lookup.Open(ctx, storage.NewLocalEngine(), storage.MustParseURI(db))
	require.NoError(t, err)
	for _, i := range []uint64{0, 1, 2500, 4999} {
		pos, ok, err := index.Lookup(ctx, i*i+7)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, pos)
	}
	_, ok, err := index.Lookup(ctx, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	err = root.Airindex.ExecRoot([]string{"-log.path", "/dev/null", "build", data})
	assert.ErrorContains(t, err, "-db")
}
