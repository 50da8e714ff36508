// Package dataset loads sorted key/position data and query keysets.
package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
)

// DType is the key width of a SOSD blob.
type DType int

const (
	Uint32 DType = 4
	Uint64 DType = 8
)

func ParseDType(s string) (DType, error) {
	switch s {
	case "uint32":
		return Uint32, nil
	case "uint64", "":
		return Uint64, nil
	}
	return 0, aie.E(aie.Config, "invalid sosd dtype %q", s)
}

func (d DType) String() string {
	switch d {
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// ReadSOSD reads a SOSD blob: a little-endian 8-byte key count followed
// by that many sorted keys of width dtype.  Repeated keys are dropped and
// each remaining key is paired with its rank.  If limit is positive, at
// most limit keys are read.
func ReadSOSD(r io.Reader, dtype DType, limit int) ([]model.Pair, error) {
	if dtype != Uint32 && dtype != Uint64 {
		return nil, aie.E(aie.Config, "invalid sosd dtype %d", int(dtype))
	}
	br := bufio.NewReaderSize(r, 1<<20)
	var hdr [8]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, aie.E(aie.Build, "sosd header: %w", err)
	}
	n := binary.LittleEndian.Uint64(hdr[:])
	if limit > 0 && uint64(limit) < n {
		n = uint64(limit)
	}
	pairs := make([]model.Pair, 0, n)
	buf := make([]byte, dtype)
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, aie.E(aie.Build, "sosd key %d of %d: %w", i, n, err)
		}
		var key uint64
		if dtype == Uint32 {
			key = uint64(binary.LittleEndian.Uint32(buf))
		} else {
			key = binary.LittleEndian.Uint64(buf)
		}
		if len(pairs) > 0 {
			last := pairs[len(pairs)-1].Key
			if key == last {
				continue
			}
			if key < last {
				return nil, aie.E(aie.Build, "sosd keys not sorted at index %d", i)
			}
		}
		pairs = append(pairs, model.Pair{Key: key, Position: uint64(len(pairs))})
	}
	return pairs, nil
}

// WriteSOSD writes keys in SOSD blob format.
func WriteSOSD(w io.Writer, dtype DType, keys []uint64) error {
	bw := bufio.NewWriter(w)
	b := binary.LittleEndian.AppendUint64(nil, uint64(len(keys)))
	for _, k := range keys {
		if dtype == Uint32 {
			b = binary.LittleEndian.AppendUint32(b, uint32(k))
		} else {
			b = binary.LittleEndian.AppendUint64(b, k)
		}
		if len(b) >= 1<<16 {
			if _, err := bw.Write(b); err != nil {
				return err
			}
			b = b[:0]
		}
	}
	if _, err := bw.Write(b); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadText reads one pair per line as "key position" or "key,position".
// Blank lines and lines starting with '#' are skipped.
func ReadText(r io.Reader) ([]model.Pair, error) {
	var pairs []model.Pair
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != 2 {
			return nil, aie.E(aie.Build, "line %d: want key and position", line)
		}
		key, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, aie.E(aie.Build, "line %d: %w", line, err)
		}
		pos, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, aie.E(aie.Build, "line %d: %w", line, err)
		}
		pairs = append(pairs, model.Pair{Key: key, Position: pos})
	}
	return pairs, scanner.Err()
}

// Load reads pairs from path.  Files ending in ".txt" or ".csv" are read
// as text and anything else as a SOSD blob.
func Load(path string, dtype DType, limit int) ([]model.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".txt") || strings.HasSuffix(path, ".csv") {
		pairs, err := ReadText(f)
		if err == nil && limit > 0 && len(pairs) > limit {
			pairs = pairs[:limit]
		}
		return pairs, err
	}
	return ReadSOSD(f, dtype, limit)
}
