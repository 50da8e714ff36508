package profile

import (
	"context"
	"math"
	"time"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/pkg/storage"
)

// Measure fits an affine profile to the latency of reads against the object
// at u.  Each size in sizes is read rounds times at offset zero and the
// mean latencies are fit by least squares.  The object must be at least as
// large as the largest size.
func Measure(ctx context.Context, engine storage.Engine, u *storage.URI, sizes []int64, rounds int) (*Affine, error) {
	if len(sizes) < 2 {
		return nil, aie.E(aie.Config, "profiling needs at least two read sizes")
	}
	if rounds < 1 {
		rounds = 1
	}
	xs := make([]float64, len(sizes))
	ys := make([]float64, len(sizes))
	for i, size := range sizes {
		var total time.Duration
		for r := 0; r < rounds; r++ {
			start := time.Now()
			if _, err := engine.ReadRange(ctx, u, 0, size); err != nil {
				return nil, aie.Storagef(err, "profiling %s", u)
			}
			total += time.Since(start)
		}
		xs[i] = float64(size)
		ys[i] = float64(total.Nanoseconds()) / float64(rounds)
	}
	return fit(xs, ys)
}

// fit returns the affine law minimizing squared error over the points
// (bytes, nanoseconds).
func fit(xs, ys []float64) (*Affine, error) {
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return nil, aie.E(aie.Config, "profiling read sizes must differ")
	}
	slope := (n*sxy - sx*sy) / den
	intercept := (sy - slope*sx) / n
	if slope <= 0 {
		return nil, aie.E(aie.Config, "measured latency does not grow with read size")
	}
	if intercept < 0 {
		intercept = 0
	}
	// slope is nanoseconds per byte.
	return NewAffine(time.Duration(math.Round(intercept)), 1e9/slope)
}
