package lookup

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/lookup"
	"github.com/brimdata/airindex/pkg/charm"
	"github.com/peterh/liner"
)

var Cmd = &charm.Spec{
	Name:  "lookup",
	Usage: "lookup -db prefix [-no_cache] [-i] key ...",
	Short: "look up keys in a published index",
	Long: `
The lookup command opens the index most recently published under the -db
prefix and prints the position of each key given, or "not found".  With -i,
keys are read from an interactive prompt instead.`,
	New: New,
}

type Command struct {
	*root.Command
	db          string
	noCache     bool
	stats       bool
	interactive bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.db, "db", "", "location of the index")
	f.BoolVar(&c.noCache, "no_cache", false, "read storage directly, bypassing the cache")
	f.BoolVar(&c.stats, "stats", false, "print storage read counts after the lookups")
	f.BoolVar(&c.interactive, "i", false, "read keys from an interactive prompt")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) == 0 && !c.interactive {
		return errors.New("lookup: at least one key must be specified")
	}
	keys := make([]uint64, len(args))
	for i, arg := range args {
		if keys[i], err = strconv.ParseUint(arg, 10, 64); err != nil {
			return fmt.Errorf("lookup: %w", err)
		}
	}
	prefix, err := root.ParsePrefix(c.db)
	if err != nil {
		return err
	}
	engine, err := c.StorageFlags.Open(ctx, c.noCache, nil)
	if err != nil {
		return err
	}
	defer engine.Close()
	index, err := lookup.Open(ctx, engine, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.lookup(ctx, index, key); err != nil {
			return err
		}
	}
	if c.interactive {
		if err := c.prompt(ctx, index); err != nil {
			return err
		}
	}
	if c.stats {
		s := index.Stats()
		fmt.Printf("%d reads, %d bytes\n", s.Reads, s.ReadBytes)
	}
	return nil
}

func (c *Command) lookup(ctx context.Context, index *lookup.Index, key uint64) error {
	pos, ok, err := index.Lookup(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("%d %d\n", key, pos)
	} else {
		fmt.Printf("%d not found\n", key)
	}
	return nil
}

func (c *Command) prompt(ctx context.Context, index *lookup.Index) error {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)
	for ctx.Err() == nil {
		line, err := rl.Prompt("key> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rl.AppendHistory(line)
		key, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := c.lookup(ctx, index, key); err != nil {
			return err
		}
	}
	return ctx.Err()
}
