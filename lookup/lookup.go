// Package lookup resolves keys against a published index.  Opening an
// index loads its root manifest once.  Each lookup then walks down the
// layers below the root and issues exactly one storage read per layer.
package lookup

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync/atomic"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/layer"
	"github.com/brimdata/airindex/model"
	"github.com/brimdata/airindex/pkg/storage"
	"golang.org/x/exp/slices"
)

// Index is a read-only handle on a published index.  It is safe for
// concurrent use.
type Index struct {
	engine   storage.Engine
	dir      *storage.URI
	manifest *layer.Manifest
	parts    [][]*storage.URI
	poison   atomic.Pointer[error]
	stats    stats
}

// Open loads the index most recently published under prefix.
func Open(ctx context.Context, engine storage.Engine, prefix *storage.URI) (*Index, error) {
	headURI := prefix.AppendPath(layer.HeadName)
	head, err := engine.ReadAll(ctx, headURI)
	if err != nil {
		return nil, aie.Storagef(err, "read %s", headURI)
	}
	rel := strings.TrimSpace(string(head))
	if rel == "" {
		return nil, aie.E(aie.Corrupt, "%s is empty", headURI)
	}
	return OpenRoot(ctx, engine, prefix.AppendPath(path.Dir(rel)))
}

// OpenRoot loads the index whose root object lives in dir.
func OpenRoot(ctx context.Context, engine storage.Engine, dir *storage.URI) (*Index, error) {
	rootURI := dir.AppendPath(layer.RootName)
	b, err := engine.ReadAll(ctx, rootURI)
	if err != nil {
		return nil, aie.Storagef(err, "read %s", rootURI)
	}
	m, err := layer.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	x := &Index{
		engine:   engine,
		dir:      dir,
		manifest: m,
	}
	for _, l := range m.Layers[:len(m.Layers)-1] {
		uris := make([]*storage.URI, len(l.Parts))
		for i, p := range l.Parts {
			uris[i] = dir.AppendPath(p.Path)
		}
		x.parts = append(x.parts, uris)
	}
	return x, nil
}

func (x *Index) Layers() []layer.Info {
	return x.manifest.Layers
}

func (x *Index) MinKey() uint64 {
	return x.manifest.MinKey
}

func (x *Index) MaxKey() uint64 {
	return x.manifest.MaxKey
}

// Lookup returns the position of key.  A key absent from the index is not
// an error: found is false.  A Corrupt error permanently invalidates the
// handle.
func (x *Index) Lookup(ctx context.Context, key uint64) (uint64, bool, error) {
	if p := x.poison.Load(); p != nil {
		return 0, false, *p
	}
	x.stats.lookups.Add(1)
	pos, found, err := x.lookup(ctx, key)
	switch {
	case err != nil:
		x.stats.errors.Add(1)
		if aie.IsKind(err, aie.Corrupt) {
			x.poison.CompareAndSwap(nil, &err)
		}
	case found:
		x.stats.found.Add(1)
	default:
		x.stats.notFound.Add(1)
	}
	return pos, found, err
}

func (x *Index) lookup(ctx context.Context, key uint64) (uint64, bool, error) {
	m := x.manifest
	if key < m.MinKey || key > m.MaxKey {
		return 0, false, nil
	}
	segs := m.Root
	for n := len(m.Layers) - 2; n >= 0; n-- {
		i := lastAtOrBelow(len(segs), key, func(i int) uint64 { return segs[i].KeyLo })
		if i < 0 {
			return 0, false, aie.E(aie.Corrupt, "layer %d: no segment covers key %d", n+1, key)
		}
		b, err := x.readWindow(ctx, n, segs[i], key)
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			pairs, err := layer.DecodePairs(b)
			if err != nil {
				return 0, false, err
			}
			k, ok := slices.BinarySearchFunc(pairs, key, func(p model.Pair, key uint64) int {
				switch {
				case p.Key < key:
					return -1
				case p.Key > key:
					return 1
				}
				return 0
			})
			if !ok {
				return 0, false, nil
			}
			return pairs[k].Position, true, nil
		}
		if segs, err = layer.DecodeSegments(b); err != nil {
			return 0, false, err
		}
		if len(segs) == 0 || segs[0].KeyLo > key {
			return 0, false, aie.E(aie.Corrupt, "layer %d: window misses key %d", n, key)
		}
	}
	panic("index has no layers below its root")
}

// readWindow reads the records of layer n that seg's prediction for key
// allows, clamped to the part of the layer holding key.
func (x *Index) readWindow(ctx context.Context, n int, seg model.Segment, key uint64) ([]byte, error) {
	info := x.manifest.Layers[n]
	rs := uint64(info.RecordSize)
	k := lastAtOrBelow(len(info.Parts), key, func(i int) uint64 { return info.Parts[i].FirstKey })
	if k < 0 {
		return nil, aie.E(aie.Corrupt, "layer %d: no part covers key %d", n, key)
	}
	part := info.Parts[k]
	pred := seg.Predict(key)
	lo := subSat(subSat(pred, seg.Delta), rs) / rs * rs
	hi := addSat(pred, seg.Delta)/rs*rs + rs
	if lo < part.Offset {
		lo = part.Offset
	}
	if end := part.Offset + part.Length; hi > end {
		hi = end
	}
	if lo >= hi {
		return nil, aie.E(aie.Corrupt, "layer %d: predicted window for key %d lies outside part %s", n, key, part.Path)
	}
	x.stats.reads.Add(1)
	b, err := x.engine.ReadRange(ctx, x.parts[n][k], int64(lo-part.Offset), int64(hi-lo))
	if err != nil {
		if errors.Is(err, storage.ErrOutOfRange) || aie.IsKind(err, aie.NotFound) {
			return nil, aie.E(aie.Corrupt, "layer %d: %w", n, err)
		}
		return nil, aie.Storagef(err, "read %s", x.parts[n][k])
	}
	x.stats.readBytes.Add(int64(len(b)))
	if uint64(len(b)) != hi-lo {
		return nil, aie.E(aie.Corrupt, "layer %d: short read of %s (%d of %d bytes)", n, part.Path, len(b), hi-lo)
	}
	return b, nil
}

// lastAtOrBelow returns the largest i in [0, n) with keyAt(i) <= key or -1.
func lastAtOrBelow(n int, key uint64, keyAt func(int) uint64) int {
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if keyAt(mid) <= key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

func subSat(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

func addSat(a, b uint64) uint64 {
	if c := a + b; c >= a {
		return c
	}
	return ^uint64(0)
}
