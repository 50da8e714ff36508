// Package model defines the piecewise models stacked into an index and
// their fixed-width record encodings.
package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/brimdata/airindex/aie"
)

// Tag identifies the kind of model a segment carries.
type Tag uint8

const (
	// Step segments predict a constant position.
	Step Tag = iota
	// Linear segments predict along a line anchored at KeyLo.
	Linear
)

func (t Tag) String() string {
	switch t {
	case Step:
		return "step"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Pair is a key and the position it maps to.
type Pair struct {
	Key      uint64
	Position uint64
}

const (
	// PairSize is the encoded size of a data record.
	PairSize = 16
	// SegmentSize is the encoded size of a segment record.
	SegmentSize = 41
)

// Segment models the positions of the keys in [KeyLo, next.KeyLo).  Keys
// past KeyMax, the largest key the segment was fitted on, evaluate as
// KeyMax.  Delta is the largest error observed on the fitted keys.
type Segment struct {
	KeyLo  uint64
	KeyMax uint64
	Tag    Tag
	Slope  float64
	// Base is the predicted position at KeyLo.
	Base  float64
	Delta uint64
	// Count is the number of keys the segment was fitted on.  It is not
	// serialized.
	Count int
}

// Predict returns the position the segment predicts for key, rounded to
// the nearest integer and clamped at zero.
func (s Segment) Predict(key uint64) uint64 {
	if s.Tag == Step || key <= s.KeyLo {
		return clamp(s.Base)
	}
	if key > s.KeyMax {
		key = s.KeyMax
	}
	return clamp(s.Base + s.Slope*float64(key-s.KeyLo))
}

func clamp(v float64) uint64 {
	v = math.Round(v)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

func (s Segment) ErrorBound() uint64 {
	return s.Delta
}

// Intercept returns the position the segment's line predicts at key zero.
func (s Segment) Intercept() float64 {
	if s.Tag == Step {
		return s.Base
	}
	return s.Base - s.Slope*float64(s.KeyLo)
}

// AppendTo appends the segment's record encoding to b.
func (s Segment) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, s.KeyLo)
	b = binary.LittleEndian.AppendUint64(b, s.KeyMax)
	b = append(b, byte(s.Tag))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(s.Slope))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(s.Base))
	return binary.LittleEndian.AppendUint64(b, s.Delta)
}

// DecodeSegment decodes the segment record at the front of b.
func DecodeSegment(b []byte) (Segment, error) {
	if len(b) < SegmentSize {
		return Segment{}, aie.E(aie.Corrupt, "short segment record (%d bytes)", len(b))
	}
	s := Segment{
		KeyLo:  binary.LittleEndian.Uint64(b),
		KeyMax: binary.LittleEndian.Uint64(b[8:]),
		Tag:    Tag(b[16]),
		Slope:  math.Float64frombits(binary.LittleEndian.Uint64(b[17:])),
		Base:   math.Float64frombits(binary.LittleEndian.Uint64(b[25:])),
		Delta:  binary.LittleEndian.Uint64(b[33:]),
	}
	if s.Tag != Step && s.Tag != Linear {
		return Segment{}, aie.E(aie.Corrupt, "unknown segment tag %d", b[16])
	}
	if s.KeyMax < s.KeyLo {
		return Segment{}, aie.E(aie.Corrupt, "segment key range [%d, %d] inverted", s.KeyLo, s.KeyMax)
	}
	return s, nil
}

func (p Pair) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, p.Key)
	return binary.LittleEndian.AppendUint64(b, p.Position)
}

func DecodePair(b []byte) (Pair, error) {
	if len(b) < PairSize {
		return Pair{}, aie.E(aie.Corrupt, "short data record (%d bytes)", len(b))
	}
	return Pair{
		Key:      binary.LittleEndian.Uint64(b),
		Position: binary.LittleEndian.Uint64(b[8:]),
	}, nil
}

// CheckSorted returns a Build error unless pairs is non-empty and strictly
// ascending by key.
func CheckSorted(pairs []Pair) error {
	if len(pairs) == 0 {
		return aie.E(aie.Build, "empty dataset")
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Key <= pairs[i-1].Key {
			return aie.E(aie.Build, "keys not strictly ascending at index %d (%d after %d)", i, pairs[i].Key, pairs[i-1].Key)
		}
	}
	return nil
}

// MaxError returns the largest prediction error of s over pairs.
func MaxError(s Segment, pairs []Pair) uint64 {
	var max uint64
	for _, p := range pairs {
		if e := absDiff(s.Predict(p.Key), p.Position); e > max {
			max = e
		}
	}
	return max
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
