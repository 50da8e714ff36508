// Package layer defines how an index's layers are laid out in a segment
// store.  Every layer is a tightly packed array of fixed-width records
// split across one or more sealed part objects.  The root manifest
// describes all layers and carries the root layer's records inline.
package layer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
)

const (
	Magic   = "AIRX"
	Version = 1
	// DataDrafter names the drafter of layer 0, which holds raw data.
	DataDrafter = "data"
	// HeadName is the object under an index prefix that holds the path
	// of the published root, relative to the prefix.
	HeadName = "HEAD"
	// RootName is the root object within a build's directory.
	RootName = "root"
)

// Part locates a contiguous run of a layer's records.  Path is relative to
// the directory holding the root object and Offset is the byte offset of
// the run within the whole layer.
type Part struct {
	Path     string `json:"path"`
	FirstKey uint64 `json:"first_key"`
	Offset   uint64 `json:"offset"`
	Length   uint64 `json:"length"`
}

// Info describes one layer.
type Info struct {
	Drafter string `json:"drafter"`
	// Param is the Δ or load the drafter was run with.
	Param uint64 `json:"param"`
	// Delta is the largest error recorded by any segment in the layer.
	Delta      uint64 `json:"delta"`
	RecordSize int    `json:"record_size"`
	Count      uint64 `json:"count"`
	Length     uint64 `json:"length"`
	Parts      []Part `json:"parts,omitempty"`
}

// Manifest is the decoded root object.  Layers are ordered from raw data
// (index 0) to the root.  The root layer has no parts and its records are
// held in Root.
type Manifest struct {
	BlockSize int
	MinKey    uint64
	MaxKey    uint64
	Layers    []Info
	Root      []model.Segment
}

func (m *Manifest) Marshal() []byte {
	var b []byte
	b = append(b, Magic...)
	b = binary.LittleEndian.AppendUint16(b, Version)
	b = binary.LittleEndian.AppendUint64(b, uint64(m.BlockSize))
	b = binary.LittleEndian.AppendUint64(b, m.MinKey)
	b = binary.LittleEndian.AppendUint64(b, m.MaxKey)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(m.Layers)))
	for _, l := range m.Layers {
		b = appendString(b, l.Drafter)
		b = binary.LittleEndian.AppendUint64(b, l.Param)
		b = binary.LittleEndian.AppendUint64(b, l.Delta)
		b = binary.LittleEndian.AppendUint16(b, uint16(l.RecordSize))
		b = binary.LittleEndian.AppendUint64(b, l.Count)
		b = binary.LittleEndian.AppendUint64(b, l.Length)
		b = binary.LittleEndian.AppendUint32(b, uint32(len(l.Parts)))
		for _, p := range l.Parts {
			b = appendString(b, p.Path)
			b = binary.LittleEndian.AppendUint64(b, p.FirstKey)
			b = binary.LittleEndian.AppendUint64(b, p.Offset)
			b = binary.LittleEndian.AppendUint64(b, p.Length)
		}
	}
	for _, s := range m.Root {
		b = s.AppendTo(b)
	}
	return b
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

// decoder reads little-endian fields and remembers the first short read.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.b) < n {
		d.err = aie.E(aie.Corrupt, "root manifest truncated")
		return nil
	}
	out := d.b[:n]
	d.b = d.b[n:]
	return out
}

func (d *decoder) u16() uint16 {
	if b := d.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) str() string {
	return string(d.next(int(d.u16())))
}

// Unmarshal decodes and validates a root manifest.  Any inconsistency is
// reported as a Corrupt error.
func Unmarshal(b []byte) (*Manifest, error) {
	d := &decoder{b: b}
	if magic := d.next(len(Magic)); d.err == nil && string(magic) != Magic {
		return nil, aie.E(aie.Corrupt, "bad root magic %q", magic)
	}
	if v := d.u16(); d.err == nil && v != Version {
		return nil, aie.E(aie.Corrupt, "unsupported root version %d", v)
	}
	m := &Manifest{
		BlockSize: int(d.u64()),
		MinKey:    d.u64(),
		MaxKey:    d.u64(),
	}
	n := int(d.u16())
	for i := 0; i < n && d.err == nil; i++ {
		l := Info{
			Drafter:    d.str(),
			Param:      d.u64(),
			Delta:      d.u64(),
			RecordSize: int(d.u16()),
			Count:      d.u64(),
			Length:     d.u64(),
		}
		nparts := int(d.u32())
		for k := 0; k < nparts && d.err == nil; k++ {
			l.Parts = append(l.Parts, Part{
				Path:     d.str(),
				FirstKey: d.u64(),
				Offset:   d.u64(),
				Length:   d.u64(),
			})
		}
		m.Layers = append(m.Layers, l)
	}
	if d.err != nil {
		return nil, d.err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	root := m.Layers[len(m.Layers)-1]
	if uint64(len(d.b)) != root.Length {
		return nil, aie.E(aie.Corrupt, "root layer holds %d bytes, manifest records %d", len(d.b), root.Length)
	}
	for off := 0; off < len(d.b); off += model.SegmentSize {
		s, err := model.DecodeSegment(d.b[off:])
		if err != nil {
			return nil, err
		}
		m.Root = append(m.Root, s)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if len(m.Layers) < 2 {
		return aie.E(aie.Corrupt, "index has %d layers", len(m.Layers))
	}
	if m.MinKey > m.MaxKey {
		return aie.E(aie.Corrupt, "key range [%d, %d] inverted", m.MinKey, m.MaxKey)
	}
	for i, l := range m.Layers {
		want := model.SegmentSize
		if i == 0 {
			want = model.PairSize
		}
		if l.RecordSize != want {
			return aie.E(aie.Corrupt, "layer %d record size %d, want %d", i, l.RecordSize, want)
		}
		if l.Count == 0 || l.Count > math.MaxUint64/uint64(want) || l.Count*uint64(want) != l.Length {
			return aie.E(aie.Corrupt, "layer %d length %d does not hold %d records", i, l.Length, l.Count)
		}
		if i == len(m.Layers)-1 {
			if len(l.Parts) != 0 {
				return aie.E(aie.Corrupt, "root layer has parts")
			}
			if m.BlockSize > 0 && l.Length > uint64(m.BlockSize) {
				return aie.E(aie.Corrupt, "root layer (%d bytes) exceeds block size %d", l.Length, m.BlockSize)
			}
			continue
		}
		var off uint64
		for k, p := range l.Parts {
			if p.Offset != off || p.Length == 0 || p.Length%uint64(want) != 0 {
				return aie.E(aie.Corrupt, "layer %d part %d misplaced", i, k)
			}
			if k > 0 && p.FirstKey <= l.Parts[k-1].FirstKey {
				return aie.E(aie.Corrupt, "layer %d part %d out of order", i, k)
			}
			off += p.Length
		}
		if off != l.Length {
			return aie.E(aie.Corrupt, "layer %d parts hold %d bytes, want %d", i, off, l.Length)
		}
	}
	return nil
}

func (l Info) String() string {
	return fmt.Sprintf("%s(param=%d, Δ=%d) %d records, %d bytes, %d parts", l.Drafter, l.Param, l.Delta, l.Count, l.Length, len(l.Parts))
}
