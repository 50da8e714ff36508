package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOSDRoundTrip(t *testing.T) {
	for _, dtype := range []DType{Uint32, Uint64} {
		var buf bytes.Buffer
		require.NoError(t, WriteSOSD(&buf, dtype, []uint64{0, 3, 3, 7, 1 << 20}))
		pairs, err := ReadSOSD(bytes.NewReader(buf.Bytes()), dtype, 0)
		require.NoError(t, err)
		assert.Equal(t, []model.Pair{{0, 0}, {3, 1}, {7, 2}, {1 << 20, 3}}, pairs, dtype.String())

		pairs, err = ReadSOSD(bytes.NewReader(buf.Bytes()), dtype, 2)
		require.NoError(t, err)
		assert.Len(t, pairs, 2)
	}
}

func TestSOSDErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSOSD(&buf, Uint64, []uint64{5, 4}))
	_, err := ReadSOSD(bytes.NewReader(buf.Bytes()), Uint64, 0)
	assert.True(t, aie.IsKind(err, aie.Build))
	_, err = ReadSOSD(bytes.NewReader(buf.Bytes()[:12]), Uint64, 0)
	assert.True(t, aie.IsKind(err, aie.Build))
	_, err = ParseDType("int8")
	assert.True(t, aie.IsKind(err, aie.Config))
}

func TestReadText(t *testing.T) {
	in := "# key,position\n1,0\n2 10\n\n3\t20\n"
	pairs, err := ReadText(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.Pair{{1, 0}, {2, 10}, {3, 20}}, pairs)
	_, err = ReadText(strings.NewReader("1,2,3\n"))
	assert.True(t, aie.IsKind(err, aie.Build))
	_, err = ReadText(strings.NewReader("x,2\n"))
	assert.True(t, aie.IsKind(err, aie.Build))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(text, []byte("1,0\n2,10\n3,20\n"), 0644))
	pairs, err := Load(text, Uint64, 2)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	blob := filepath.Join(dir, "books_200M_uint32")
	f, err := os.Create(blob)
	require.NoError(t, err)
	require.NoError(t, WriteSOSD(f, Uint32, []uint64{1, 2, 3}))
	require.NoError(t, f.Close())
	pairs, err = Load(blob, Uint32, 0)
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
}

func TestKeyset(t *testing.T) {
	pairs := []model.Pair{{1, 0}, {2, 10}, {3, 20}, {4, 30}}
	queries := SampleKeyset(pairs, 50, DefaultSeed)
	require.Len(t, queries, 50)
	assert.Equal(t, queries, SampleKeyset(pairs, 50, DefaultSeed))
	for _, q := range queries {
		assert.Equal(t, (q.Key-1)*10, q.Position)
	}
	var buf bytes.Buffer
	require.NoError(t, WriteKeyset(&buf, queries))
	out, err := ReadKeyset(&buf)
	require.NoError(t, err)
	assert.Equal(t, queries, out)
	assert.Nil(t, SampleKeyset(nil, 5, 1))
}
