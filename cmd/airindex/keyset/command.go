package keyset

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/dataset"
	"github.com/brimdata/airindex/pkg/charm"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "keyset",
	Usage: "keyset -o file [-n count] [-seed n] data-file",
	Short: "sample benchmark queries from a dataset",
	Long: `
The keyset command draws keys uniformly at random from a dataset and writes
them, with the position each maps to, as "key position" lines for use by
the bench command.  The same seed always yields the same keyset.`,
	New: New,
}

type Command struct {
	*root.Command
	out      string
	n        int
	seed     int64
	dtype    string
	sosdSize int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.out, "o", "", "keyset file to write")
	f.IntVar(&c.n, "n", 1_000_000, "number of keys to sample")
	f.Int64Var(&c.seed, "seed", dataset.DefaultSeed, "random seed")
	f.StringVar(&c.dtype, "sosd_dtype", "uint64", "key type of the SOSD blob (values: uint32, uint64)")
	f.IntVar(&c.sosdSize, "sosd_size", 0, "number of keys to read, in millions (0 reads all)")
	return c, nil
}

func (c *Command) Run(args []string) (err error) {
	_, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) != 1 {
		return errors.New("keyset: a single data file must be specified")
	}
	if c.out == "" {
		return errors.New("keyset: output file must be given with -o")
	}
	dtype, err := dataset.ParseDType(c.dtype)
	if err != nil {
		return err
	}
	pairs, err := dataset.Load(args[0], dtype, c.sosdSize*1_000_000)
	if err != nil {
		return err
	}
	queries := dataset.SampleKeyset(pairs, c.n, c.seed)
	f, err := os.Create(c.out)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if err := dataset.WriteKeyset(f, queries); err != nil {
		return err
	}
	c.Logger.Info("Keyset written", zap.String("path", c.out), zap.Int("keys", len(queries)))
	fmt.Printf("wrote %d keys to %s\n", len(queries), c.out)
	return nil
}
