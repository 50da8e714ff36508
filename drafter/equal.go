package drafter

import "github.com/brimdata/airindex/model"

// bandEqual cuts pairs into chunks of load keys and fits each chunk with a
// least-squares line.
func bandEqual(pairs []model.Pair, load uint64) []model.Segment {
	if load < 1 {
		load = 1
	}
	n := uint64(len(pairs))
	segs := make([]model.Segment, 0, (n+load-1)/load)
	for lo := uint64(0); lo < n; lo += load {
		hi := lo + load
		if hi > n {
			hi = n
		}
		segs = append(segs, fitLine(pairs[lo:hi]))
	}
	return segs
}

func fitLine(chunk []model.Pair) model.Segment {
	first := chunk[0].Key
	n := float64(len(chunk))
	var meanX, meanY float64
	for _, p := range chunk {
		meanX += float64(p.Key - first)
		meanY += float64(p.Position)
	}
	meanX /= n
	meanY /= n
	var sxy, sxx float64
	for _, p := range chunk {
		dx := float64(p.Key-first) - meanX
		sxy += dx * (float64(p.Position) - meanY)
		sxx += dx * dx
	}
	seg := model.Segment{
		KeyLo:  first,
		KeyMax: chunk[len(chunk)-1].Key,
		Tag:    model.Linear,
		Base:   meanY,
		Count:  len(chunk),
	}
	// Lookups rely on predictions that never decrease with the key.
	if sxx > 0 && sxy > 0 {
		seg.Slope = sxy / sxx
		seg.Base = meanY - seg.Slope*meanX
	}
	seg.Delta = model.MaxError(seg, chunk)
	return seg
}
