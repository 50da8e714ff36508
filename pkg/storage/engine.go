//go:generate mockgen -destination=./mock/mock_engine.go -package=mock github.com/brimdata/airindex/pkg/storage Engine

// Package storage defines the block/segment protocol that the index builder
// and lookup engine consume, along with the backends that implement it.
//
// A segment object is an append-only byte sequence made of blocks.  Each
// Append adds one block.  Once an object is sealed its bytes never change,
// so any ReadRange within its bounds is well defined and cacheable.
// Appends issued by one writer are strictly ordered and visible to readers
// as soon as Append returns.
package storage

import (
	"context"
	"errors"
)

var (
	ErrSealed     = errors.New("segment object is sealed")
	ErrExists     = errors.New("segment object already exists")
	ErrOutOfRange = errors.New("read range out of bounds")
	ErrEmptyBlock = errors.New("cannot append an empty block")
)

// Props are the properties of a segment object.
type Props struct {
	SegmentLength int64 `yaml:"length"`
	BlockCount    int   `yaml:"blocks"`
	Sealed        bool  `yaml:"sealed"`
}

type Engine interface {
	// Open establishes the connection described by props.  Backends
	// without connection state ignore it.
	Open(context.Context, map[string]string) error
	// Close releases any connection state acquired by Open.
	Close() error
	Create(context.Context, *URI) error
	Remove(context.Context, *URI) error
	GetSize(context.Context, *URI) (int64, error)
	GetProps(context.Context, *URI) (Props, error)
	Seal(context.Context, *URI) error
	// Append adds b as a new block and returns its block number.
	Append(context.Context, *URI, []byte) (int, error)
	ReadAll(context.Context, *URI) ([]byte, error)
	ReadRange(ctx context.Context, u *URI, offset, length int64) ([]byte, error)
	// WriteAll replaces the object's contents with b as a single block,
	// creating the object if needed.
	WriteAll(context.Context, *URI, []byte) error
}

// Scoped opens engine with props, runs fn, and closes the engine on every
// exit path.
func Scoped(ctx context.Context, engine Engine, props map[string]string, fn func(Engine) error) (err error) {
	if err := engine.Open(ctx, props); err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(engine)
}

func checkRange(size, offset, length int64) error {
	if offset < 0 || length < 0 || offset+length > size {
		return ErrOutOfRange
	}
	return nil
}
