// Package profile provides storage cost profiles.  A profile maps the number
// of bytes fetched in one storage access to an estimated latency and is used
// only to rank candidate index configurations.
package profile

import (
	"fmt"
	"time"

	"github.com/brimdata/airindex/aie"
)

// Profile estimates the cost, in nanoseconds, of one storage read of n bytes.
// Cost must be strictly increasing in n.
type Profile interface {
	Cost(n uint64) float64
}

// Affine is the cost law latency + n/bandwidth.
type Affine struct {
	Latency time.Duration
	// Bandwidth in bytes per second.
	Bandwidth float64
}

var _ Profile = (*Affine)(nil)

func NewAffine(latency time.Duration, bandwidth float64) (*Affine, error) {
	if bandwidth <= 0 {
		return nil, aie.E(aie.Config, "storage profile bandwidth must be positive (%g)", bandwidth)
	}
	if latency < 0 {
		return nil, aie.E(aie.Config, "storage profile latency must not be negative (%s)", latency)
	}
	return &Affine{Latency: latency, Bandwidth: bandwidth}, nil
}

// FromFlags builds an affine profile from a latency in nanoseconds and a
// bandwidth in megabytes (1e6 bytes) per second.
func FromFlags(latencyNS int64, bandwidthMBps float64) (*Affine, error) {
	return NewAffine(time.Duration(latencyNS), bandwidthMBps*1e6)
}

func (a *Affine) Cost(n uint64) float64 {
	return float64(a.Latency.Nanoseconds()) + float64(n)/a.Bandwidth*1e9
}

func (a *Affine) String() string {
	return fmt.Sprintf("affine(latency=%s, bandwidth=%.1fMB/s)", a.Latency, a.Bandwidth/1e6)
}

// Presets roughly matching the storage classes the index targets.
var (
	NVMe = &Affine{Latency: 100 * time.Microsecond, Bandwidth: 2e9}
	NFS  = &Affine{Latency: 2 * time.Millisecond, Bandwidth: 200e6}
	Blob = &Affine{Latency: 20 * time.Millisecond, Bandwidth: 100e6}
)

// Lookup returns a preset by name.
func Lookup(name string) (*Affine, error) {
	switch name {
	case "nvme", "ssd":
		return NVMe, nil
	case "nfs":
		return NFS, nil
	case "blob", "s3", "azure":
		return Blob, nil
	}
	return nil, aie.E(aie.Config, "unknown storage profile %q", name)
}
