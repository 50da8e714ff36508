package profile

import (
	"flag"
	"fmt"
	"strings"

	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/brimdata/airindex/pkg/units"
	"github.com/brimdata/airindex/profile"
	"github.com/segmentio/ksuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "profile",
	Usage: "profile -db prefix [-sizes 4KiB,...] [-rounds n]",
	Short: "measure an affine storage profile",
	Long: `
The profile command writes a probe object under the -db prefix, times
ranged reads of several sizes against it, and fits the latency and
bandwidth of an affine storage profile.  The result can be passed to the
build command with -affine_latency_ns and -affine_bandwidth_mbps.`,
	New: New,
}

type Command struct {
	*root.Command
	db     string
	sizes  string
	rounds int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.db, "db", "", "location to write the probe object")
	f.StringVar(&c.sizes, "sizes", "4KiB,64KiB,1MiB,4MiB", "comma-separated read sizes")
	f.IntVar(&c.rounds, "rounds", 10, "reads per size")
	return c, nil
}

func parseSizes(s string) ([]int64, error) {
	var sizes []int64
	for _, field := range strings.Split(s, ",") {
		var b units.Bytes
		if err := b.Set(strings.TrimSpace(field)); err != nil {
			return nil, err
		}
		sizes = append(sizes, int64(b))
	}
	return sizes, nil
}

func (c *Command) Run(args []string) (err error) {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	prefix, err := root.ParsePrefix(c.db)
	if err != nil {
		return err
	}
	sizes, err := parseSizes(c.sizes)
	if err != nil {
		return err
	}
	var largest int64
	for _, size := range sizes {
		if size > largest {
			largest = size
		}
	}
	engine, err := c.StorageFlags.Open(ctx, true, nil)
	if err != nil {
		return err
	}
	defer engine.Close()
	probe := prefix.AppendPath("probe-" + ksuid.New().String())
	if err := engine.WriteAll(ctx, probe, make([]byte, largest)); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, engine.Remove(ctx, probe))
	}()
	prof, err := profile.Measure(ctx, engine, probe, sizes, c.rounds)
	if err != nil {
		return err
	}
	c.Logger.Info("Storage profiled", zap.Stringer("profile", prof), zap.Stringer("probe", probe))
	fmt.Println(prof)
	fmt.Printf("-affine_latency_ns %d -affine_bandwidth_mbps %.1f\n", prof.Latency.Nanoseconds(), prof.Bandwidth/1e6)
	return nil
}
