// Package drafter turns a sorted key/position array into an ordered
// sequence of error-bounded segments.
package drafter

import (
	"fmt"
	"strings"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/model"
)

type Kind int

const (
	KindStep Kind = iota
	KindBandGreedy
	KindBandEqual
)

// All lists every drafter in declaration order.
var All = []Kind{KindStep, KindBandGreedy, KindBandEqual}

func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindBandGreedy:
		return "band_greedy"
	case KindBandEqual:
		return "band_equal"
	}
	return fmt.Sprintf("drafter(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for _, k := range All {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, aie.E(aie.Config, "unknown drafter %q", s)
}

// ParseKinds parses a comma-separated drafter list, keeping its order.
func ParseKinds(s string) ([]Kind, error) {
	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, aie.E(aie.Config, "drafter %q listed twice", name)
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return nil, aie.E(aie.Config, "no drafters given")
	}
	return kinds, nil
}

// FormatKinds is the inverse of ParseKinds.
func FormatKinds(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// Parameterized reports whether the drafter's output depends on the param
// passed to Draft.
func (k Kind) Parameterized() bool {
	return k != KindStep
}

// Draft fits segments to pairs.  For band_greedy, param is the error bound
// Δ.  For band_equal, it is the number of keys per segment.  Step ignores
// it.
func (k Kind) Draft(pairs []model.Pair, param uint64) ([]model.Segment, error) {
	if err := model.CheckSorted(pairs); err != nil {
		return nil, err
	}
	switch k {
	case KindStep:
		return step(pairs), nil
	case KindBandGreedy:
		return bandGreedy(pairs, param), nil
	case KindBandEqual:
		return bandEqual(pairs, param), nil
	}
	return nil, aie.E(aie.Config, "unknown drafter %d", int(k))
}

func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func step(pairs []model.Pair) []model.Segment {
	segs := make([]model.Segment, len(pairs))
	for i, p := range pairs {
		segs[i] = model.Segment{
			KeyLo:  p.Key,
			KeyMax: p.Key,
			Tag:    model.Step,
			Base:   float64(p.Position),
			Count:  1,
		}
	}
	return segs
}
