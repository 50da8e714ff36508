package main

import (
	"fmt"
	"os"

	"github.com/brimdata/airindex/cmd/airindex/bench"
	"github.com/brimdata/airindex/cmd/airindex/build"
	"github.com/brimdata/airindex/cmd/airindex/keyset"
	"github.com/brimdata/airindex/cmd/airindex/lookup"
	"github.com/brimdata/airindex/cmd/airindex/profile"
	"github.com/brimdata/airindex/cmd/airindex/root"
	"github.com/brimdata/airindex/cmd/airindex/serve"
	"github.com/brimdata/airindex/pkg/charm"
)

func main() {
	airindex := root.Airindex
	airindex.Add(build.Cmd)
	airindex.Add(lookup.Cmd)
	airindex.Add(bench.Cmd)
	airindex.Add(keyset.Cmd)
	airindex.Add(profile.Cmd)
	airindex.Add(serve.Cmd)
	airindex.Add(charm.Help)
	if err := airindex.ExecRoot(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
