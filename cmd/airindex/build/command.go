package build

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/airindex/builder"
	"github.com/brimdata/airindex/cli/buildflags"
	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/dataset"
	"github.com/brimdata/airindex/model"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/brimdata/airindex/pkg/units"
	"github.com/pbnjay/memory"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "build",
	Usage: "build -db prefix [options] data-file",
	Short: "build and publish an index over a sorted dataset",
	Long: `
The build command reads sorted keys from a SOSD blob (or "key,position"
lines from a .txt or .csv file), builds an index stack tuned to the
storage profile, and publishes it under the -db prefix.  Repeated keys in
a SOSD blob are dropped and each key maps to its rank.

A build that fails removes the objects it wrote and leaves any previously
published index in place.`,
	New: New,
}

type Command struct {
	*root.Command
	db         string
	dtype      string
	sosdSize   int
	buildFlags buildflags.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.db, "db", "", "location under which to publish the index")
	f.StringVar(&c.dtype, "sosd_dtype", "uint64", "key type of the SOSD blob (values: uint32, uint64)")
	f.IntVar(&c.sosdSize, "sosd_size", 0, "number of keys to read, in millions (0 reads all)")
	c.buildFlags.SetFlags(f)
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) != 1 {
		return errors.New("build: a single data file must be specified")
	}
	prefix, err := root.ParsePrefix(c.db)
	if err != nil {
		return err
	}
	dtype, err := dataset.ParseDType(c.dtype)
	if err != nil {
		return err
	}
	config, err := c.buildFlags.Config()
	if err != nil {
		return err
	}
	prof, err := c.buildFlags.StorageProfile()
	if err != nil {
		return err
	}
	c.checkMemory(args[0], dtype)
	pairs, err := dataset.Load(args[0], dtype, c.sosdSize*1_000_000)
	if err != nil {
		return err
	}
	c.Logger.Info("Dataset loaded", zap.String("path", args[0]), zap.Int("pairs", len(pairs)))
	engine, err := c.StorageFlags.Open(ctx, true, nil)
	if err != nil {
		return err
	}
	defer engine.Close()
	b, err := builder.New(engine, prof, config, c.Logger)
	if err != nil {
		return err
	}
	stack, err := b.Build(ctx, prefix, pairs)
	if err != nil {
		return err
	}
	fmt.Printf("built index %s at %s with profile %s\n", stack.BuildID, prefix, prof)
	for i, info := range stack.Layers {
		fmt.Printf("  layer %d: %s\n", i, info)
	}
	return nil
}

// checkMemory warns when the pairs loaded from path, together with the
// layers planned above them, may not fit in physical memory.
func (c *Command) checkMemory(path string, dtype dataset.DType) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	total := memory.TotalMemory()
	if total == 0 {
		return
	}
	keys := uint64(info.Size()) / uint64(dtype)
	if c.sosdSize > 0 && uint64(c.sosdSize)*1_000_000 < keys {
		keys = uint64(c.sosdSize) * 1_000_000
	}
	// Planning holds the pairs plus drafted segments for every candidate.
	need := keys * model.PairSize * 2
	if need > total {
		c.Logger.Warn("Dataset may not fit in memory",
			zap.Stringer("estimate", units.Bytes(need)),
			zap.Stringer("memory", units.Bytes(total)),
		)
	}
}
