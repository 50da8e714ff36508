package layer

import (
	"context"
	"fmt"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/pkg/storage"
)

// Writer streams fixed-width records into sealed part objects.  Records
// are buffered into blocks of at most blockSize bytes, each block is
// written with one Append, and a new part starts once the current one
// holds maxBlocks blocks.
type Writer struct {
	engine     storage.Engine
	dir        *storage.URI
	name       string
	recordSize int
	blockRecs  int
	maxBlocks  int

	buf      []byte
	bufKey   uint64
	part     *Part
	blocks   int
	parts    []Part
	count    uint64
	length   uint64
	lastKey  uint64
	maxDelta uint64
	created  []*storage.URI
}

func NewWriter(engine storage.Engine, dir *storage.URI, name string, recordSize, blockSize, maxBlocks int) (*Writer, error) {
	if recordSize <= 0 || blockSize < recordSize {
		return nil, aie.E(aie.Config, "block size %d cannot hold a %d-byte record", blockSize, recordSize)
	}
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	return &Writer{
		engine:     engine,
		dir:        dir,
		name:       name,
		recordSize: recordSize,
		blockRecs:  blockSize / recordSize,
		maxBlocks:  maxBlocks,
	}, nil
}

// Write adds the encoded record rec, whose key is key.  Keys must be
// strictly ascending.
func (w *Writer) Write(ctx context.Context, key uint64, rec []byte) error {
	if len(rec) != w.recordSize {
		return fmt.Errorf("layer %s: record is %d bytes, want %d", w.name, len(rec), w.recordSize)
	}
	if w.count > 0 && key <= w.lastKey {
		return aie.E(aie.Build, "layer %s: key %d after %d", w.name, key, w.lastKey)
	}
	if len(w.buf) == 0 {
		w.bufKey = key
	}
	w.buf = append(w.buf, rec...)
	w.lastKey = key
	w.count++
	if len(w.buf) == w.blockRecs*w.recordSize {
		return w.flush(ctx)
	}
	return nil
}

// NoteDelta records the error bound of a written segment so the layer's
// maximum is reported by Close.
func (w *Writer) NoteDelta(delta uint64) {
	if delta > w.maxDelta {
		w.maxDelta = delta
	}
}

func (w *Writer) flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	if w.part == nil {
		name := fmt.Sprintf("%s-%d", w.name, len(w.parts))
		u := w.dir.AppendPath(name)
		if err := w.engine.Create(ctx, u); err != nil {
			return aie.Storagef(err, "create %s", u)
		}
		w.created = append(w.created, u)
		w.part = &Part{
			Path:     name,
			FirstKey: w.bufKey,
			Offset:   w.length,
		}
		w.blocks = 0
	}
	u := w.created[len(w.created)-1]
	if _, err := w.engine.Append(ctx, u, w.buf); err != nil {
		return aie.Storagef(err, "append %s", u)
	}
	w.part.Length += uint64(len(w.buf))
	w.length += uint64(len(w.buf))
	w.buf = w.buf[:0]
	w.blocks++
	if w.blocks >= w.maxBlocks {
		return w.seal(ctx)
	}
	return nil
}

func (w *Writer) seal(ctx context.Context) error {
	if w.part == nil {
		return nil
	}
	u := w.created[len(w.created)-1]
	if err := w.engine.Seal(ctx, u); err != nil {
		return aie.Storagef(err, "seal %s", u)
	}
	w.parts = append(w.parts, *w.part)
	w.part = nil
	return nil
}

// Close flushes and seals the last part and returns the layer's
// description, less its drafter and param.
func (w *Writer) Close(ctx context.Context) (Info, error) {
	if err := w.flush(ctx); err != nil {
		return Info{}, err
	}
	if err := w.seal(ctx); err != nil {
		return Info{}, err
	}
	return Info{
		Delta:      w.maxDelta,
		RecordSize: w.recordSize,
		Count:      w.count,
		Length:     w.length,
		Parts:      w.parts,
	}, nil
}

// Created returns every object the writer created, including any left
// unsealed by a failure.
func (w *Writer) Created() []*storage.URI {
	return w.created
}
