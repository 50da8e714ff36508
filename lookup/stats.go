package lookup

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

type stats struct {
	lookups   atomic.Int64
	found     atomic.Int64
	notFound  atomic.Int64
	errors    atomic.Int64
	reads     atomic.Int64
	readBytes atomic.Int64
}

type Stats struct {
	Lookups   int64 `json:"lookups"`
	Found     int64 `json:"found"`
	NotFound  int64 `json:"not_found"`
	Errors    int64 `json:"errors"`
	Reads     int64 `json:"reads"`
	ReadBytes int64 `json:"read_bytes"`
}

func (x *Index) Stats() Stats {
	return Stats{
		Lookups:   x.stats.lookups.Load(),
		Found:     x.stats.found.Load(),
		NotFound:  x.stats.notFound.Load(),
		Errors:    x.stats.errors.Load(),
		Reads:     x.stats.reads.Load(),
		ReadBytes: x.stats.readBytes.Load(),
	}
}

// Register exports the index's counters to reg.
func (x *Index) Register(reg prometheus.Registerer) error {
	counters := []struct {
		name, help string
		v          *atomic.Int64
	}{
		{"airindex_lookups_total", "Number of index lookups.", &x.stats.lookups},
		{"airindex_lookups_not_found_total", "Number of lookups for keys absent from the index.", &x.stats.notFound},
		{"airindex_lookup_errors_total", "Number of lookups that failed.", &x.stats.errors},
		{"airindex_lookup_reads_total", "Number of storage reads issued by lookups.", &x.stats.reads},
		{"airindex_lookup_read_bytes_total", "Number of bytes read by lookups.", &x.stats.readBytes},
	}
	for _, c := range counters {
		v := c.v
		if err := reg.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: c.name,
			Help: c.help,
		}, func() float64 {
			return float64(v.Load())
		})); err != nil {
			return err
		}
	}
	return nil
}
