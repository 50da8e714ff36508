package profile

import (
	"context"
	"testing"
	"time"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineCost(t *testing.T) {
	p, err := NewAffine(time.Millisecond, 1e6)
	require.NoError(t, err)
	assert.Equal(t, 1e6, p.Cost(0))
	assert.Equal(t, 2e6, p.Cost(1000))
	prev := p.Cost(0)
	for n := uint64(1); n < 1<<20; n <<= 1 {
		c := p.Cost(n)
		assert.Greater(t, c, prev)
		prev = c
	}
}

func TestAffineValidation(t *testing.T) {
	_, err := NewAffine(time.Millisecond, 0)
	assert.True(t, aie.IsKind(err, aie.Config))
	_, err = NewAffine(-time.Millisecond, 1)
	assert.True(t, aie.IsKind(err, aie.Config))
	_, err = FromFlags(1000, -5)
	assert.True(t, aie.IsKind(err, aie.Config))
	p, err := FromFlags(100000, 100)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Microsecond, p.Latency)
	assert.Equal(t, 100e6, p.Bandwidth)
}

func TestLookupPreset(t *testing.T) {
	p, err := Lookup("s3")
	require.NoError(t, err)
	assert.Same(t, Blob, p)
	_, err = Lookup("tape")
	assert.True(t, aie.IsKind(err, aie.Config))
}

func TestFit(t *testing.T) {
	xs := []float64{1000, 2000, 4000, 8000}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 5000 + x*2
	}
	p, err := fit(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, float64(5*time.Microsecond), float64(p.Latency), 1)
	assert.InDelta(t, 5e8, p.Bandwidth, 1)
	_, err = fit([]float64{1, 1}, []float64{2, 3})
	assert.True(t, aie.IsKind(err, aie.Config))
}

func TestMeasure(t *testing.T) {
	ctx := context.Background()
	engine := storage.NewMemory()
	u := storage.MustParseURI("mem://profile/blob")
	require.NoError(t, engine.WriteAll(ctx, u, make([]byte, 1<<20)))
	_, err := Measure(ctx, engine, u, []int64{1 << 10}, 1)
	assert.True(t, aie.IsKind(err, aie.Config))
	_, err = Measure(ctx, engine, u, []int64{1 << 10, 1 << 21}, 1)
	assert.ErrorIs(t, err, storage.ErrOutOfRange)
}
