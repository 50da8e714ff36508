package storage

import (
	"context"
	"sync/atomic"
)

// Counting wraps an Engine and counts the calls made through it.
type Counting struct {
	Engine
	reads     atomic.Int64
	readBytes atomic.Int64
	appends   atomic.Int64
	writes    atomic.Int64
}

// Counts is a snapshot of a Counting engine's counters.  Reads counts
// both ReadRange and ReadAll calls.
type Counts struct {
	Reads     int64 `json:"reads"`
	ReadBytes int64 `json:"read_bytes"`
	Appends   int64 `json:"appends"`
	Writes    int64 `json:"writes"`
}

var _ Engine = (*Counting)(nil)

func NewCounting(engine Engine) *Counting {
	return &Counting{Engine: engine}
}

func (c *Counting) Append(ctx context.Context, u *URI, b []byte) (int, error) {
	c.appends.Add(1)
	return c.Engine.Append(ctx, u, b)
}

func (c *Counting) ReadAll(ctx context.Context, u *URI) ([]byte, error) {
	c.reads.Add(1)
	b, err := c.Engine.ReadAll(ctx, u)
	c.readBytes.Add(int64(len(b)))
	return b, err
}

func (c *Counting) ReadRange(ctx context.Context, u *URI, offset, length int64) ([]byte, error) {
	c.reads.Add(1)
	b, err := c.Engine.ReadRange(ctx, u, offset, length)
	c.readBytes.Add(int64(len(b)))
	return b, err
}

func (c *Counting) WriteAll(ctx context.Context, u *URI, b []byte) error {
	c.writes.Add(1)
	return c.Engine.WriteAll(ctx, u, b)
}

func (c *Counting) Counts() Counts {
	return Counts{
		Reads:     c.reads.Load(),
		ReadBytes: c.readBytes.Load(),
		Appends:   c.appends.Load(),
		Writes:    c.writes.Load(),
	}
}

func (c *Counting) Reset() {
	c.reads.Store(0)
	c.readBytes.Store(0)
	c.appends.Store(0)
	c.writes.Store(0)
}
