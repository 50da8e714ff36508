package layer

import (
	"context"
	"testing"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
	"github.com/brimdata/airindex/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRecordRoundTrip(t *testing.T) {
	segs := []model.Segment{
		{KeyLo: 1, KeyMax: 4, Tag: model.Linear, Slope: 10, Base: 0, Delta: 3},
		{KeyLo: 9, KeyMax: 9, Tag: model.Step, Base: 77},
	}
	var b []byte
	for _, s := range segs {
		b = s.AppendTo(b)
	}
	require.Len(t, b, 2*model.SegmentSize)
	out, err := DecodeSegments(b)
	require.NoError(t, err)
	assert.Equal(t, segs, out)

	_, err = DecodeSegments(b[:len(b)-1])
	assert.True(t, aie.IsKind(err, aie.Corrupt))
	b[model.SegmentSize+16] = 9
	_, err = DecodeSegments(b)
	assert.True(t, aie.IsKind(err, aie.Corrupt))
}

func TestWriterParts(t *testing.T) {
	ctx := context.Background()
	engine := storage.NewCounting(storage.NewMemory())
	dir := storage.MustParseURI("mem://idx/build")
	// Three records per block, two blocks per part.
	w, err := NewWriter(engine, dir, "layer0", model.PairSize, 3*model.PairSize+5, 2)
	require.NoError(t, err)
	for i := uint64(0); i < 14; i++ {
		p := model.Pair{Key: 100 + i, Position: i}
		require.NoError(t, w.Write(ctx, p.Key, p.AppendTo(nil)))
	}
	info, err := w.Close(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 14, info.Count)
	assert.EqualValues(t, 14*model.PairSize, info.Length)
	require.Len(t, info.Parts, 3)
	assert.Equal(t, Part{Path: "layer0-0", FirstKey: 100, Offset: 0, Length: 6 * model.PairSize}, info.Parts[0])
	assert.Equal(t, Part{Path: "layer0-1", FirstKey: 106, Offset: 6 * model.PairSize, Length: 6 * model.PairSize}, info.Parts[1])
	assert.Equal(t, Part{Path: "layer0-2", FirstKey: 112, Offset: 12 * model.PairSize, Length: 2 * model.PairSize}, info.Parts[2])
	assert.EqualValues(t, 5, engine.Counts().Appends)

	for _, p := range info.Parts {
		props, err := engine.GetProps(ctx, dir.AppendPath(p.Path))
		require.NoError(t, err)
		assert.True(t, props.Sealed)
	}
	b, err := engine.ReadAll(ctx, dir.AppendPath("layer0-2"))
	require.NoError(t, err)
	pairs, err := DecodePairs(b)
	require.NoError(t, err)
	assert.Equal(t, []model.Pair{{112, 12}, {113, 13}}, pairs)
	assert.Len(t, w.Created(), 3)

	err = w.Write(ctx, 1, model.Pair{Key: 1}.AppendTo(nil))
	assert.True(t, aie.IsKind(err, aie.Build))
}

func TestWriterBlockTooSmall(t *testing.T) {
	_, err := NewWriter(storage.NewMemory(), storage.MustParseURI("mem://x"), "l", model.SegmentSize, 40, 1)
	assert.True(t, aie.IsKind(err, aie.Config))
}

func testManifest() *Manifest {
	root := []model.Segment{
		{KeyLo: 1, KeyMax: 4, Tag: model.Linear, Slope: 16, Base: 0},
	}
	return &Manifest{
		BlockSize: 4096,
		MinKey:    1,
		MaxKey:    4,
		Layers: []Info{
			{Drafter: DataDrafter, RecordSize: model.PairSize, Count: 4, Length: 64,
				Parts: []Part{{Path: "layer0-0", FirstKey: 1, Length: 64}}},
			{Drafter: "band_greedy", RecordSize: model.SegmentSize, Count: 1, Length: model.SegmentSize},
		},
		Root: root,
	}
}

func TestManifestRoundTrip(t *testing.T) {
	m := testManifest()
	out, err := Unmarshal(m.Marshal())
	require.NoError(t, err)
	assert.Equal(t, m, out)
}

func TestManifestCorrupt(t *testing.T) {
	b := testManifest().Marshal()
	_, err := Unmarshal(b[:len(b)-3])
	assert.True(t, aie.IsKind(err, aie.Corrupt))
	_, err = Unmarshal(b[:10])
	assert.True(t, aie.IsKind(err, aie.Corrupt))
	bad := append([]byte("XXXX"), b[4:]...)
	_, err = Unmarshal(bad)
	assert.True(t, aie.IsKind(err, aie.Corrupt))

	m := testManifest()
	m.Layers[0].Length = 60
	_, err = Unmarshal(m.Marshal())
	assert.True(t, aie.IsKind(err, aie.Corrupt))

	m = testManifest()
	m.Layers = m.Layers[1:]
	_, err = Unmarshal(m.Marshal())
	assert.True(t, aie.IsKind(err, aie.Corrupt))
}
