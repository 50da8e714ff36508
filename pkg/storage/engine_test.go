package storage

import (
	"context"
	"testing"

	"github.com/brimdata/airindex/aie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T, engine Engine, root *URI) {
	ctx := context.Background()
	require.NoError(t, engine.Open(ctx, nil))
	defer engine.Close()
	u := root.AppendPath("seg", "0")

	_, err := engine.GetProps(ctx, u)
	assert.True(t, aie.IsKind(err, aie.NotFound), "got %v", err)
	_, err = engine.Append(ctx, u, []byte("x"))
	assert.True(t, aie.IsKind(err, aie.NotFound), "got %v", err)

	require.NoError(t, engine.Create(ctx, u))
	assert.ErrorIs(t, engine.Create(ctx, u), ErrExists)
	_, err = engine.Append(ctx, u, nil)
	assert.ErrorIs(t, err, ErrEmptyBlock)

	n, err := engine.Append(ctx, u, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = engine.Append(ctx, u, []byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	props, err := engine.GetProps(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, Props{SegmentLength: 11, BlockCount: 2}, props)
	size, err := engine.GetSize(ctx, u)
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)

	b, err := engine.ReadRange(ctx, u, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, "lo wo", string(b))
	b, err = engine.ReadRange(ctx, u, 11, 0)
	require.NoError(t, err)
	assert.Len(t, b, 0)
	_, err = engine.ReadRange(ctx, u, 8, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = engine.ReadRange(ctx, u, -1, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	require.NoError(t, engine.Seal(ctx, u))
	_, err = engine.Append(ctx, u, []byte("!"))
	assert.ErrorIs(t, err, ErrSealed)
	assert.ErrorIs(t, engine.WriteAll(ctx, u, []byte("!")), ErrSealed)
	b, err = engine.ReadAll(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(b))
	props, err = engine.GetProps(ctx, u)
	require.NoError(t, err)
	assert.True(t, props.Sealed)

	head := root.AppendPath("HEAD")
	require.NoError(t, engine.WriteAll(ctx, head, []byte("a")))
	require.NoError(t, engine.WriteAll(ctx, head, []byte("bc")))
	b, err = engine.ReadAll(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, "bc", string(b))
	props, err = engine.GetProps(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, Props{SegmentLength: 2, BlockCount: 1}, props)

	require.NoError(t, engine.Remove(ctx, u))
	_, err = engine.ReadAll(ctx, u)
	assert.True(t, aie.IsKind(err, aie.NotFound), "got %v", err)
	assert.True(t, aie.IsKind(engine.Remove(ctx, u), aie.NotFound))
}

func TestMemoryEngine(t *testing.T) {
	testEngine(t, NewMemory(), MustParseURI("mem://test"))
}

func TestFileSystemEngine(t *testing.T) {
	testEngine(t, NewFileSystem(), MustParseURI(t.TempDir()))
}

func TestS3Engine(t *testing.T) {
	testEngine(t, NewS3WithClient(newFakeS3()), MustParseURI("s3://bucket/prefix"))
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	router := NewLocalEngine()
	mem := NewMemory()
	router.Set(MemoryScheme, mem)
	u := MustParseURI("mem://x/a")
	require.NoError(t, router.WriteAll(ctx, u, []byte("abc")))
	b, err := mem.ReadAll(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
	assert.Equal(t, []string{"mem://x/a"}, mem.List())

	_, err = NewRouter().ReadAll(ctx, u)
	assert.Error(t, err)
}

func TestCounting(t *testing.T) {
	ctx := context.Background()
	c := NewCounting(NewMemory())
	u := MustParseURI("mem://x/a")
	require.NoError(t, c.Create(ctx, u))
	_, err := c.Append(ctx, u, []byte("abcd"))
	require.NoError(t, err)
	_, err = c.ReadRange(ctx, u, 1, 2)
	require.NoError(t, err)
	_, err = c.ReadAll(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, Counts{Reads: 2, ReadBytes: 6, Appends: 1}, c.Counts())
	c.Reset()
	assert.Equal(t, Counts{}, c.Counts())
}

func TestScopedClosesOnError(t *testing.T) {
	closed := false
	engine := &closeRecorder{Engine: NewMemory(), closed: &closed}
	err := Scoped(context.Background(), engine, nil, func(Engine) error {
		return aie.E(aie.Build, "boom")
	})
	assert.True(t, aie.IsKind(err, aie.Build))
	assert.True(t, closed)
}

type closeRecorder struct {
	Engine
	closed *bool
}

func (c *closeRecorder) Close() error {
	*c.closed = true
	return nil
}
