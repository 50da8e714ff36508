package root

import (
	"context"
	"flag"

	"github.com/brimdata/airindex/cli"
	"github.com/brimdata/airindex/cli/logflags"
	"github.com/brimdata/airindex/cli/storageflags"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/brimdata/airindex/pkg/storage"
	"go.uber.org/zap"
)

var Airindex = &charm.Spec{
	Name:  "airindex",
	Usage: "airindex <command> [options] [arguments...]",
	Short: "build and query learned indexes on remote storage",
	Long: `
airindex builds multi-layer learned indexes over sorted keys and serves
lookups against them.  Each layer is tuned to the latency and bandwidth of
the storage holding it so that a lookup costs one ranged read per layer.`,
	New: New,
}

type Command struct {
	charm.Command
	cli.Flags
	LogFlags     logflags.Flags
	StorageFlags storageflags.Flags

	Logger *zap.Logger
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.SetFlags(f)
	c.LogFlags.SetFlags(f)
	c.StorageFlags.SetFlags(f)
	return c, nil
}

// Init sets up logging and a signal-aware context for a subcommand.
func (c *Command) Init(all ...cli.Initializer) (context.Context, func(), error) {
	logger, err := c.LogFlags.Open()
	if err != nil {
		return nil, nil, err
	}
	ctx, cleanup, err := c.Flags.Init(all...)
	if err != nil {
		return nil, nil, err
	}
	c.Logger = logger
	return ctx, func() {
		cleanup()
		_ = c.StorageFlags.Close()
		_ = logger.Sync()
	}, nil
}

// ParsePrefix parses the index location given by a -db flag.
func ParsePrefix(db string) (*storage.URI, error) {
	if db == "" {
		return nil, errNoDB
	}
	return storage.ParseURI(db)
}

func (c *Command) Run(args []string) error {
	if len(args) == 0 {
		return charm.NeedHelp
	}
	return charm.ErrNoRun
}
