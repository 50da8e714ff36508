package layer

import (
	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
)

// DecodeSegments parses a window of segment records.
func DecodeSegments(b []byte) ([]model.Segment, error) {
	if len(b)%model.SegmentSize != 0 {
		return nil, aie.E(aie.Corrupt, "%d bytes is not a whole number of segment records", len(b))
	}
	segs := make([]model.Segment, 0, len(b)/model.SegmentSize)
	for off := 0; off < len(b); off += model.SegmentSize {
		s, err := model.DecodeSegment(b[off:])
		if err != nil {
			return nil, err
		}
		if n := len(segs); n > 0 && s.KeyLo <= segs[n-1].KeyMax {
			return nil, aie.E(aie.Corrupt, "segment records out of order")
		}
		segs = append(segs, s)
	}
	return segs, nil
}

// DecodePairs parses a window of data records.
func DecodePairs(b []byte) ([]model.Pair, error) {
	if len(b)%model.PairSize != 0 {
		return nil, aie.E(aie.Corrupt, "%d bytes is not a whole number of data records", len(b))
	}
	pairs := make([]model.Pair, 0, len(b)/model.PairSize)
	for off := 0; off < len(b); off += model.PairSize {
		p, err := model.DecodePair(b[off:])
		if err != nil {
			return nil, err
		}
		if n := len(pairs); n > 0 && p.Key <= pairs[n-1].Key {
			return nil, aie.E(aie.Corrupt, "data records out of order")
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
