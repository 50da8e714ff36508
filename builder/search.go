package builder

import (
	"context"
	"math"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/drafter"
	"github.com/brimdata/airindex/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// level is the input to one layer transition: the keys of the layer below
// paired with the byte offsets of their records.
type level struct {
	pairs      []model.Pair
	recordSize int
	size       uint64
}

func newLevel(keys func(int) uint64, n, recordSize int) level {
	pairs := make([]model.Pair, n)
	for i := range pairs {
		pairs[i] = model.Pair{Key: keys(i), Position: uint64(i * recordSize)}
	}
	return level{
		pairs:      pairs,
		recordSize: recordSize,
		size:       uint64(n * recordSize),
	}
}

// candidate is the outcome of drafting one level with one drafter and
// param.
type candidate struct {
	kind     drafter.Kind
	order    int
	param    uint64
	segments int
	size     uint64
	delta    uint64
	window   float64
	cost     float64
	fits     bool
	ok       bool
}

// less orders candidates by cost, then segment count, then drafter
// declaration order, then param.
func (c *candidate) less(o *candidate) bool {
	if c.cost != o.cost {
		return c.cost < o.cost
	}
	if c.segments != o.segments {
		return c.segments < o.segments
	}
	if c.order != o.order {
		return c.order < o.order
	}
	return c.param < o.param
}

type task struct {
	kind  drafter.Kind
	order int
	param uint64
}

// evaluate drafts in with t and estimates the expected cost of the reads
// the resulting layer implies.  levels is the number of layers expected
// above the candidate or -1 to estimate it from the candidate's shrink
// ratio.  Candidates that neither fit a block nor shrink the level are
// returned with ok unset.
func (b *Builder) evaluate(in level, t task, levels int) (candidate, error) {
	segs, err := t.kind.Draft(in.pairs, t.param)
	if err != nil {
		return candidate{}, err
	}
	block := uint64(b.config.BlockSize)
	c := candidate{
		kind:     t.kind,
		order:    t.order,
		param:    t.param,
		segments: len(segs),
		size:     uint64(len(segs)) * model.SegmentSize,
	}
	c.fits = c.size <= block
	if !c.fits && c.size >= in.size {
		return c, nil
	}
	var weighted, total float64
	for _, s := range segs {
		w := 2*float64(s.Delta) + 3*float64(in.recordSize)
		if w > float64(in.size) {
			w = float64(in.size)
		}
		weighted += w * float64(s.Count)
		total += float64(s.Count)
		if s.Delta > c.delta {
			c.delta = s.Delta
		}
	}
	c.window = weighted / total
	if levels < 0 {
		levels = 0
		if !c.fits {
			ratio := float64(in.size) / float64(c.size)
			levels = int(math.Ceil(math.Log(float64(c.size)/float64(block)) / math.Log(ratio)))
		}
	}
	c.cost = float64(1+levels) * b.profile.Cost(uint64(math.Ceil(c.window)))
	c.ok = true
	return c, nil
}

func (b *Builder) tasks(params func(drafter.Kind) []uint64) []task {
	var tasks []task
	for order, kind := range b.config.Drafters {
		if !kind.Parameterized() {
			tasks = append(tasks, task{kind: kind, order: order})
			continue
		}
		for _, param := range params(kind) {
			tasks = append(tasks, task{kind: kind, order: order, param: param})
		}
	}
	return tasks
}

// search evaluates every task in parallel and returns the best admissible
// candidate.  Results are reduced in task order so the choice does not
// depend on scheduling.
func (b *Builder) search(ctx context.Context, layer int, in level, tasks []task) (candidate, error) {
	results := make([]candidate, len(tasks))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(b.config.workers())
	for i, t := range tasks {
		i, t := i, t
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := b.evaluate(in, t, -1)
			results[i] = c
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return candidate{}, err
	}
	return b.reduce(layer, results)
}

func (b *Builder) reduce(layer int, results []candidate) (candidate, error) {
	var best *candidate
	for i := range results {
		c := &results[i]
		b.logCandidate(layer, c)
		if c.ok && (best == nil || c.less(best)) {
			best = c
		}
	}
	if best == nil {
		return candidate{}, aie.E(aie.Build, "no drafter shrinks layer %d within the configured loads", layer-1)
	}
	return *best, nil
}

// searchFixed picks, per drafter, the smallest param whose layer is no
// larger than target, then the cheapest drafter.  remaining is the number
// of layers still to be built above this one.
func (b *Builder) searchFixed(ctx context.Context, layer int, in level, target uint64, remaining int) (candidate, error) {
	loads := b.config.Candidates()
	results := make([]candidate, len(b.config.Drafters))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(b.config.workers())
	for order, kind := range b.config.Drafters {
		order, kind := order, kind
		group.Go(func() error {
			params := []uint64{0}
			if kind.Parameterized() {
				params = loads
			}
			// Layer size does not grow with the param, so the first
			// param reaching the target can be found by bisection.
			lo, hi := 0, len(params)
			var found candidate
			for lo < hi {
				if err := ctx.Err(); err != nil {
					return err
				}
				mid := (lo + hi) / 2
				c, err := b.evaluate(in, task{kind: kind, order: order, param: params[mid]}, remaining)
				if err != nil {
					return err
				}
				if c.ok && c.size <= target && (remaining == 0 || c.size < in.size) {
					found, hi = c, mid
				} else {
					lo = mid + 1
				}
			}
			results[order] = found
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return candidate{}, err
	}
	return b.reduce(layer, results)
}

// targetSize is the size that leaves equal shrink ratios for the
// remaining layers so that the last one fits a block.
func targetSize(below, block uint64, remaining int) uint64 {
	if remaining == 0 || below <= block {
		return block
	}
	r := float64(remaining)
	t := float64(block) * math.Pow(float64(below)/float64(block), r/(r+1))
	return uint64(t)
}

func (b *Builder) logCandidate(layer int, c *candidate) {
	if !c.ok && c.segments == 0 {
		return
	}
	b.logger.Debug("Candidate",
		zap.Int("layer", layer),
		zap.Stringer("drafter", c.kind),
		zap.Uint64("param", c.param),
		zap.Int("segments", c.segments),
		zap.Uint64("bytes", c.size),
		zap.Float64("cost_ns", c.cost),
		zap.Bool("admissible", c.ok),
	)
}
