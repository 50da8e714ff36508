package model

import (
	"math"
	"testing"

	"github.com/brimdata/airindex/aie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	s := Segment{KeyLo: 100, KeyMax: 200, Tag: Linear, Slope: 0.5, Base: 10}
	assert.EqualValues(t, 10, s.Predict(50))
	assert.EqualValues(t, 10, s.Predict(100))
	assert.EqualValues(t, 35, s.Predict(150))
	assert.EqualValues(t, 60, s.Predict(200))
	assert.EqualValues(t, 60, s.Predict(1000), "keys past KeyMax evaluate as KeyMax")
	assert.Equal(t, -40.0, s.Intercept())

	step := Segment{KeyLo: 7, KeyMax: 7, Tag: Step, Base: 48}
	assert.EqualValues(t, 48, step.Predict(math.MaxUint64))
	assert.Equal(t, 48.0, step.Intercept())

	neg := Segment{KeyLo: 0, KeyMax: 10, Tag: Linear, Slope: 1, Base: -5}
	assert.EqualValues(t, 0, neg.Predict(2))
}

func TestSegmentRecord(t *testing.T) {
	s := Segment{KeyLo: 3, KeyMax: 1 << 40, Tag: Linear, Slope: 1.25, Base: 16, Delta: 9, Count: 12}
	b := s.AppendTo(nil)
	require.Len(t, b, SegmentSize)
	out, err := DecodeSegment(b)
	require.NoError(t, err)
	s.Count = 0
	assert.Equal(t, s, out)

	bad := append([]byte(nil), b...)
	bad[16] = 7
	_, err = DecodeSegment(bad)
	assert.True(t, aie.IsKind(err, aie.Corrupt))
	_, err = DecodeSegment(b[:SegmentSize-1])
	assert.True(t, aie.IsKind(err, aie.Corrupt))
	inverted := Segment{KeyLo: 10, KeyMax: 9, Tag: Step}.AppendTo(nil)
	_, err = DecodeSegment(inverted)
	assert.True(t, aie.IsKind(err, aie.Corrupt))
}

func TestPairRecord(t *testing.T) {
	p := Pair{Key: 1 << 63, Position: 42}
	b := p.AppendTo(nil)
	require.Len(t, b, PairSize)
	out, err := DecodePair(b)
	require.NoError(t, err)
	assert.Equal(t, p, out)
	_, err = DecodePair(b[:3])
	assert.True(t, aie.IsKind(err, aie.Corrupt))
}

func TestCheckSorted(t *testing.T) {
	assert.True(t, aie.IsKind(CheckSorted(nil), aie.Build))
	assert.True(t, aie.IsKind(CheckSorted([]Pair{{1, 0}, {1, 1}}), aie.Build))
	assert.True(t, aie.IsKind(CheckSorted([]Pair{{2, 0}, {1, 1}}), aie.Build))
	assert.NoError(t, CheckSorted([]Pair{{1, 0}, {2, 1}}))
}

func TestMaxError(t *testing.T) {
	s := Segment{KeyLo: 0, KeyMax: 3, Tag: Linear, Slope: 10, Base: 0}
	pairs := []Pair{{0, 0}, {1, 12}, {2, 17}, {3, 30}}
	assert.EqualValues(t, 3, MaxError(s, pairs))
}
