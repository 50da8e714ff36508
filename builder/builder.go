// Package builder constructs a layered learned index over sorted
// key/position data and persists it to a segment store.
//
// Starting from the raw data, the builder repeatedly drafts the keys of the
// topmost layer into a smaller layer of segments, choosing the drafter and
// error bound that minimize the expected cost of the storage reads a lookup
// will issue, until a layer fits in one block.  That layer becomes the root
// and is stored inline in the root manifest.  The index is published by
// pointing the prefix's HEAD object at the new root, so a failed build is
// never visible.
package builder

import (
	"context"
	"fmt"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/drafter"
	"github.com/brimdata/airindex/layer"
	"github.com/brimdata/airindex/model"
	"github.com/brimdata/airindex/pkg/storage"
	"github.com/brimdata/airindex/profile"
	"github.com/segmentio/ksuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Builder struct {
	engine  storage.Engine
	profile profile.Profile
	config  Config
	logger  *zap.Logger
}

func New(engine storage.Engine, prof profile.Profile, config Config, logger *zap.Logger) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, aie.E(aie.Config, "no storage profile")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		engine:  engine,
		profile: prof,
		config:  config,
		logger:  logger,
	}, nil
}

// Stack describes a published index.
type Stack struct {
	BuildID string `json:"build_id"`
	// Root is the path of the root object relative to the prefix.
	Root   string       `json:"root"`
	Layers []layer.Info `json:"layers"`
}

type planned struct {
	kind  drafter.Kind
	param uint64
	segs  []model.Segment
}

// Build indexes pairs, which must be strictly ascending by key, and
// publishes the index under prefix.
func (b *Builder) Build(ctx context.Context, prefix *storage.URI, pairs []model.Pair) (*Stack, error) {
	if err := model.CheckSorted(pairs); err != nil {
		return nil, err
	}
	plan, err := b.plan(ctx, pairs)
	if err != nil {
		return nil, err
	}
	id := ksuid.New().String()
	dir := prefix.AppendPath(id)
	var created []*storage.URI
	stack, err := b.write(ctx, dir, pairs, plan, &created)
	if err == nil {
		stack.BuildID = id
		stack.Root = id + "/" + layer.RootName
		head := prefix.AppendPath(layer.HeadName)
		err = aie.Storagef(b.engine.WriteAll(ctx, head, []byte(stack.Root)), "publish %s", head)
	}
	if err != nil {
		b.cleanup(context.WithoutCancel(ctx), created)
		return nil, err
	}
	b.logger.Info("Index published",
		zap.String("build_id", id),
		zap.Int("layers", len(stack.Layers)),
		zap.Stringer("prefix", prefix),
	)
	return stack, nil
}

// plan drafts every index layer in memory, from the layer above the raw
// data up to the root.
func (b *Builder) plan(ctx context.Context, pairs []model.Pair) ([]planned, error) {
	in := newLevel(func(i int) uint64 { return pairs[i].Key }, len(pairs), model.PairSize)
	block := uint64(b.config.BlockSize)
	var plan []planned
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var c candidate
		var err error
		switch b.config.Mode {
		case ModeBalance:
			c, err = b.search(ctx, n, in, b.tasks(func(drafter.Kind) []uint64 {
				return b.config.Candidates()
			}))
		case ModeSinglePass:
			c, err = b.search(ctx, n, in, b.tasks(func(drafter.Kind) []uint64 {
				return []uint64{b.config.HighLoad}
			}))
		case ModeFixedLayers:
			remaining := b.config.TargetLayers - n
			c, err = b.searchFixed(ctx, n, in, targetSize(in.size, block, remaining), remaining)
		}
		if err != nil {
			return nil, err
		}
		segs, err := c.kind.Draft(in.pairs, c.param)
		if err != nil {
			return nil, err
		}
		plan = append(plan, planned{kind: c.kind, param: c.param, segs: segs})
		b.logger.Info("Layer drafted",
			zap.Int("layer", n),
			zap.Stringer("drafter", c.kind),
			zap.Uint64("param", c.param),
			zap.Uint64("delta", c.delta),
			zap.Int("segments", len(segs)),
			zap.Uint64("bytes", c.size),
			zap.Float64("cost_ns", c.cost),
		)
		if b.config.Mode == ModeFixedLayers {
			if n == b.config.TargetLayers {
				return plan, nil
			}
		} else if c.fits {
			return plan, nil
		}
		in = newLevel(func(i int) uint64 { return segs[i].KeyLo }, len(segs), model.SegmentSize)
	}
}

func (b *Builder) write(ctx context.Context, dir *storage.URI, pairs []model.Pair, plan []planned, created *[]*storage.URI) (*Stack, error) {
	blockSize := int(b.config.BlockSize)
	w, err := layer.NewWriter(b.engine, dir, "layer0", model.PairSize, blockSize, b.config.MaxBlocks)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, model.SegmentSize)
	for _, p := range pairs {
		if err := w.Write(ctx, p.Key, p.AppendTo(buf[:0])); err != nil {
			*created = append(*created, w.Created()...)
			return nil, err
		}
	}
	info, err := w.Close(ctx)
	*created = append(*created, w.Created()...)
	if err != nil {
		return nil, err
	}
	info.Drafter = layer.DataDrafter
	m := &layer.Manifest{
		BlockSize: blockSize,
		MinKey:    pairs[0].Key,
		MaxKey:    pairs[len(pairs)-1].Key,
		Layers:    []layer.Info{info},
	}
	for n, p := range plan[:len(plan)-1] {
		name := fmt.Sprintf("layer%d", n+1)
		w, err := layer.NewWriter(b.engine, dir, name, model.SegmentSize, blockSize, b.config.MaxBlocks)
		if err != nil {
			return nil, err
		}
		for _, s := range p.segs {
			w.NoteDelta(s.Delta)
			if err := w.Write(ctx, s.KeyLo, s.AppendTo(buf[:0])); err != nil {
				*created = append(*created, w.Created()...)
				return nil, err
			}
		}
		info, err := w.Close(ctx)
		*created = append(*created, w.Created()...)
		if err != nil {
			return nil, err
		}
		info.Drafter = p.kind.String()
		info.Param = p.param
		m.Layers = append(m.Layers, info)
	}
	root := plan[len(plan)-1]
	info = layer.Info{
		Drafter:    root.kind.String(),
		Param:      root.param,
		RecordSize: model.SegmentSize,
		Count:      uint64(len(root.segs)),
		Length:     uint64(len(root.segs)) * model.SegmentSize,
	}
	for _, s := range root.segs {
		if s.Delta > info.Delta {
			info.Delta = s.Delta
		}
	}
	m.Layers = append(m.Layers, info)
	m.Root = root.segs
	u := dir.AppendPath(layer.RootName)
	*created = append(*created, u)
	if err := b.engine.WriteAll(ctx, u, m.Marshal()); err != nil {
		return nil, aie.Storagef(err, "write %s", u)
	}
	if err := b.engine.Seal(ctx, u); err != nil {
		return nil, aie.Storagef(err, "seal %s", u)
	}
	for n, l := range m.Layers {
		b.logger.Info("Layer written", zap.Int("layer", n), zap.Stringer("info", l))
	}
	return &Stack{Layers: m.Layers}, nil
}

// cleanup removes the objects of a failed build.  Failures are logged and
// otherwise ignored since nothing references the objects.
func (b *Builder) cleanup(ctx context.Context, created []*storage.URI) {
	var err error
	for _, u := range created {
		if rerr := b.engine.Remove(ctx, u); rerr != nil && !aie.IsKind(rerr, aie.NotFound) {
			err = multierr.Append(err, rerr)
		}
	}
	if err != nil {
		b.logger.Warn("Cleanup of failed build incomplete", zap.Error(err))
	}
}
