package bench

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/dataset"
	"github.com/brimdata/airindex/lookup"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/brimdata/airindex/pkg/display"
	"github.com/brimdata/airindex/pkg/storage"
	"github.com/paulbellamy/ratecounter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var Cmd = &charm.Spec{
	Name:  "bench",
	Usage: "bench -db prefix -keyset file [options]",
	Short: "time lookups of a keyset against a published index",
	Long: `
The bench command opens the index under the -db prefix and looks up every
key in the keyset, checking that each maps to its recorded position.
Elapsed time is sampled at geometrically spaced query counts, starting
from the moment the index is opened, and the results are appended as one
JSON line to the -out file (or written to stdout).`,
	New: New,
}

type Command struct {
	*root.Command
	db      string
	keyset  string
	n       int
	noCache bool
	out     string
	workers int
	quiet   bool
	factor  float64

	done atomic.Int64
	rate *ratecounter.RateCounter
	last int64
	ctx  context.Context
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.db, "db", "", "location of the index")
	f.StringVar(&c.keyset, "keyset", "", "keyset file written by the keyset command")
	f.IntVar(&c.n, "n", 0, "number of queries to run (0 runs the whole keyset)")
	f.BoolVar(&c.noCache, "no_cache", false, "read storage directly, bypassing the cache")
	f.StringVar(&c.out, "out", "", "file to append the JSON result to")
	f.IntVar(&c.workers, "workers", 1, "number of concurrent lookups")
	f.BoolVar(&c.quiet, "q", false, "don't display progress")
	f.Float64Var(&c.factor, "milestone", 1.1, "growth factor between sampled query counts")
	return c, nil
}

// Result is the JSON record of one benchmark run.
type Result struct {
	DB           string             `json:"db"`
	Keyset       string             `json:"keyset"`
	NoCache      bool               `json:"no_cache"`
	Workers      int                `json:"workers"`
	TimeMeasures []int64            `json:"time_measures"`
	QueryCounts  []int64            `json:"query_counts"`
	Stats        lookup.Stats       `json:"stats"`
	Storage      storage.Counts     `json:"storage"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Milestones returns the query counts at which elapsed time is sampled:
// 1, then counts growing by factor (and by at least one), and finally n.
func Milestones(n int64, factor float64) []int64 {
	var out []int64
	for m := int64(1); m < n; {
		out = append(out, m)
		next := int64(math.Ceil(float64(m) * factor))
		if next <= m {
			next = m + 1
		}
		m = next
	}
	if n > 0 {
		out = append(out, n)
	}
	return out
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	c.ctx = ctx
	prefix, err := root.ParsePrefix(c.db)
	if err != nil {
		return err
	}
	if c.keyset == "" {
		return errors.New("bench: keyset file must be given with -keyset")
	}
	f, err := os.Open(c.keyset)
	if err != nil {
		return err
	}
	queries, err := dataset.ReadKeyset(f)
	f.Close()
	if err != nil {
		return err
	}
	if c.n > 0 && c.n < len(queries) {
		queries = queries[:c.n]
	}
	reg := prometheus.NewRegistry()
	engine, err := c.StorageFlags.Open(ctx, c.noCache, reg)
	if err != nil {
		return err
	}
	defer engine.Close()

	var d *display.Display
	if !c.quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		c.rate = ratecounter.NewRateCounter(time.Second)
		d = display.New(&progress{c, int64(len(queries))}, time.Second/2, os.Stderr)
		go d.Run()
	}
	start := time.Now()
	index, err := lookup.Open(ctx, engine, prefix)
	if err == nil {
		err = index.Register(reg)
	}
	var counts, times []int64
	if err == nil {
		counts, times, err = c.run(ctx, index, queries, start)
	}
	if d != nil {
		d.Close()
	}
	if err != nil {
		return err
	}
	result := Result{
		DB:           c.db,
		Keyset:       c.keyset,
		NoCache:      c.noCache,
		Workers:      c.workers,
		TimeMeasures: times,
		QueryCounts:  counts,
		Stats:        index.Stats(),
		Storage:      c.StorageFlags.Counts(),
		Metrics:      gather(reg),
	}
	c.Logger.Info("Benchmark finished",
		zap.Int("queries", len(queries)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("reads", result.Stats.Reads),
	)
	return c.write(result)
}

func (c *Command) run(ctx context.Context, index *lookup.Index, queries []dataset.Query, start time.Time) ([]int64, []int64, error) {
	milestones := Milestones(int64(len(queries)), c.factor)
	sample := make(map[int64]bool, len(milestones))
	for _, m := range milestones {
		sample[m] = true
	}
	var mu sync.Mutex
	times := make(map[int64]int64, len(milestones))
	var next atomic.Int64
	workers := c.workers
	if workers < 1 {
		workers = 1
	}
	group, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		group.Go(func() error {
			for {
				i := next.Add(1) - 1
				if i >= int64(len(queries)) {
					return nil
				}
				q := queries[i]
				pos, ok, err := index.Lookup(ctx, q.Key)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("key %d not found", q.Key)
				}
				if pos != q.Position {
					return fmt.Errorf("key %d: got position %d, want %d", q.Key, pos, q.Position)
				}
				if done := c.done.Add(1); sample[done] {
					elapsed := time.Since(start).Nanoseconds()
					mu.Lock()
					times[done] = elapsed
					mu.Unlock()
				}
			}
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	var counts, elapsed []int64
	for _, m := range milestones {
		counts = append(counts, m)
		elapsed = append(elapsed, times[m])
	}
	return counts, elapsed, nil
}

func gather(reg *prometheus.Registry) map[string]float64 {
	families, err := reg.Gather()
	if err != nil {
		return nil
	}
	out := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			name := family.GetName()
			for _, label := range m.GetLabel() {
				name += "," + label.GetName() + "=" + label.GetValue()
			}
			out[name] = value(family.GetType(), m)
		}
	}
	return out
}

func value(typ dto.MetricType, m *dto.Metric) float64 {
	switch typ {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	}
	return 0
}

func (c *Command) write(result Result) (err error) {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if c.out == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	f, err := os.OpenFile(c.out, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = f.Write(b)
	return err
}

type progress struct {
	*Command
	total int64
}

// (1234/100000) 5123/s 1.23%
func (p *progress) Display(w io.Writer) bool {
	done := p.done.Load()
	p.rate.Incr(done - p.last)
	p.last = done
	pct := 0.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total) * 100
	}
	fmt.Fprintf(w, "(%d/%d) %d/s %.2f%%\n", done, p.total, p.rate.Rate(), pct)
	return p.ctx.Err() == nil && done < p.total
}
