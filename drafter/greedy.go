package drafter

import (
	"math"

	"github.com/brimdata/airindex/model"
)

type point struct {
	x, y float64
}

// slope is a direction vector.  dx is never negative, so slopes compare by
// cross-multiplication without division.
type slope struct {
	dx, dy float64
}

func (a point) sub(b point) slope {
	return slope{a.x - b.x, a.y - b.y}
}

func (a slope) less(b slope) bool {
	return a.dy*b.dx < b.dy*a.dx
}

func (a slope) greater(b slope) bool {
	return a.dy*b.dx > b.dy*a.dx
}

func (a slope) float() float64 {
	return a.dy / a.dx
}

func cross(o, a, b point) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// hull tracks the set of lines that keep every point added so far within
// ±delta.  The feasible lines are bounded by two extreme lines, rect[0]
// through rect[2] (minimum slope) and rect[1] through rect[3] (maximum
// slope), maintained with the upper and lower convex hulls of the shifted
// points.
type hull struct {
	delta      float64
	first      uint64
	lastX      float64
	n          int
	rect       [4]point
	upper      []point
	lower      []point
	upperStart int
	lowerStart int
}

func (h *hull) reset(delta float64) {
	h.delta = delta
	h.n = 0
	h.upper = h.upper[:0]
	h.lower = h.lower[:0]
	h.upperStart = 0
	h.lowerStart = 0
}

// add tries to extend the current segment with p.  It returns false if no
// line fits the segment's points plus p, leaving the hull unchanged.
func (h *hull) add(p model.Pair) bool {
	if h.n == 0 {
		h.first = p.Key
	}
	x := float64(p.Key - h.first)
	y := float64(p.Position)
	if h.n > 0 && x <= h.lastX {
		// Keys too close to tell apart in float64.
		return false
	}
	p1 := point{x, y + h.delta}
	p2 := point{x, y - h.delta}
	switch h.n {
	case 0:
		h.rect[0], h.rect[1] = p1, p2
		h.upper = append(h.upper, p1)
		h.lower = append(h.lower, p2)
		h.lastX = x
		h.n++
		return true
	case 1:
		h.rect[2], h.rect[3] = p2, p1
		h.upper = append(h.upper, p1)
		h.lower = append(h.lower, p2)
		h.lastX = x
		h.n++
		return true
	}
	slope1 := h.rect[2].sub(h.rect[0])
	slope2 := h.rect[3].sub(h.rect[1])
	if p1.sub(h.rect[2]).less(slope1) || p2.sub(h.rect[3]).greater(slope2) {
		return false
	}
	if p1.sub(h.rect[1]).less(slope2) {
		// Find the new maximum-slope line by walking the lower hull.
		min := h.lower[h.lowerStart].sub(p1)
		minI := h.lowerStart
		for i := h.lowerStart + 1; i < len(h.lower); i++ {
			val := h.lower[i].sub(p1)
			if val.greater(min) {
				break
			}
			min, minI = val, i
		}
		h.rect[1] = h.lower[minI]
		h.rect[3] = p1
		h.lowerStart = minI
		end := len(h.upper)
		for end >= h.upperStart+2 && cross(h.upper[end-2], h.upper[end-1], p1) <= 0 {
			end--
		}
		h.upper = append(h.upper[:end], p1)
	}
	if p2.sub(h.rect[0]).greater(slope1) {
		// Find the new minimum-slope line by walking the upper hull.
		max := h.upper[h.upperStart].sub(p2)
		maxI := h.upperStart
		for i := h.upperStart + 1; i < len(h.upper); i++ {
			val := h.upper[i].sub(p2)
			if val.less(max) {
				break
			}
			max, maxI = val, i
		}
		h.rect[0] = h.upper[maxI]
		h.rect[2] = p2
		h.upperStart = maxI
		end := len(h.lower)
		for end >= h.lowerStart+2 && cross(h.lower[end-2], h.lower[end-1], p2) >= 0 {
			end--
		}
		h.lower = append(h.lower[:end], p2)
	}
	h.lastX = x
	h.n++
	return true
}

// line returns the slope and the value at x = 0 of a line that fits every
// point added since the last reset.  It picks the midpoint slope through
// the intersection of the two extreme lines, raised to zero if negative.
func (h *hull) line() (float64, float64) {
	if h.n == 1 {
		return 0, (h.rect[0].y + h.rect[1].y) / 2
	}
	p0, p1, p2, p3 := h.rect[0], h.rect[1], h.rect[2], h.rect[3]
	slope1 := p2.sub(p0)
	slope2 := p3.sub(p1)
	lo, hi := slope1.float(), slope2.float()
	m := math.Max((lo+hi)/2, 0)
	if m > hi {
		m = hi
	}
	a := slope1.dx*slope2.dy - slope1.dy*slope2.dx
	if a == 0 {
		// Parallel extreme lines.  Take the line midway between them.
		return m, ((p0.y - m*p0.x) + (p1.y - m*p1.x)) / 2
	}
	b := ((p1.x-p0.x)*(p3.y-p1.y) - (p1.y-p0.y)*(p3.x-p1.x)) / a
	ix := p0.x + b*slope1.dx
	iy := p0.y + b*slope1.dy
	return m, iy - ix*m
}

// bandGreedy covers pairs with the fewest linear segments a single
// left-to-right pass can produce, each keeping every key within delta of
// its position.
func bandGreedy(pairs []model.Pair, delta uint64) []model.Segment {
	var segs []model.Segment
	h := &hull{}
	for start := 0; start < len(pairs); {
		h.reset(float64(delta))
		end := start
		for end < len(pairs) && h.add(pairs[end]) {
			end++
		}
		seg := h.segment(pairs[start:end])
		if seg.Delta > delta {
			// Rounding in float64 broke the bound.  Keep the longest
			// prefix that honors it.
			end = start + validPrefix(h, pairs[start:end], delta)
			h.reset(float64(delta))
			for _, p := range pairs[start:end] {
				h.add(p)
			}
			seg = h.segment(pairs[start:end])
		}
		segs = append(segs, seg)
		start = end
	}
	return segs
}

func (h *hull) segment(run []model.Pair) model.Segment {
	slope, base := h.line()
	seg := model.Segment{
		KeyLo:  run[0].Key,
		KeyMax: run[len(run)-1].Key,
		Tag:    model.Linear,
		Slope:  slope,
		Base:   base,
		Count:  len(run),
	}
	seg.Delta = model.MaxError(seg, run)
	return seg
}

// validPrefix returns the length of the longest prefix of run whose
// fitted segment keeps every error within delta.  A single key always
// fits exactly.
func validPrefix(h *hull, run []model.Pair, delta uint64) int {
	lo, hi := 1, len(run)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		h.reset(float64(delta))
		for _, p := range run[:mid] {
			h.add(p)
		}
		if h.segment(run[:mid]).Delta <= delta {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
