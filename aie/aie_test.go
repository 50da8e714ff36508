package aie

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := E(Build, "empty dataset")
	assert.Equal(t, "index build failed: empty dataset", err.Error())
	assert.Equal(t, "empty dataset", err.(*Error).Message())
	assert.Equal(t, "invalid configuration", E(Config).Error())
}

func TestKindPropagation(t *testing.T) {
	base := E(Storage, "disk on fire")
	wrapped := E(fmt.Errorf("writing layer 2: %w", base))
	assert.Equal(t, Storage, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, Storage))
	assert.False(t, IsKind(wrapped, Build))
	assert.False(t, IsKind(errors.New("plain"), Storage))
}

func TestStoragef(t *testing.T) {
	require.NoError(t, Storagef(nil, "ignored"))
	err := Storagef(errors.New("connection reset"), "append %s", "mem://x")
	assert.True(t, IsKind(err, Storage))
	assert.Equal(t, "storage error: append mem://x: connection reset", err.Error())
	// Already classified errors keep their kind.
	nf := E(NotFound, "mem://y")
	assert.Same(t, nf, Storagef(nf, "read"))
}

func TestWrapVerb(t *testing.T) {
	inner := errors.New("inner")
	err := E(Corrupt, "layer 1: %w", inner)
	assert.ErrorIs(t, err, inner)
}
