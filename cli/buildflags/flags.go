// Package buildflags configures index builds from a YAML file and command
// line flags.  Flags given explicitly override the file.
package buildflags

import (
	"flag"
	"time"

	"github.com/brimdata/airindex/builder"
	"github.com/brimdata/airindex/drafter"
	"github.com/brimdata/airindex/profile"
)

// Storage profile used when neither a preset nor affine parameters are
// given: a simplified NFS mount.
const (
	DefaultLatency       = 108 * time.Millisecond
	DefaultBandwidthMBps = 104.0
)

type Flags struct {
	ConfigPath string
	Profile    string
	LatencyNS  int64
	// BandwidthMBps is in megabytes (1e6 bytes) per second.
	BandwidthMBps float64

	config   builder.Config
	drafters string
	fs       *flag.FlagSet
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.fs = fs
	f.config = builder.DefaultConfig()
	c := &f.config
	fs.StringVar(&f.ConfigPath, "config", "", "YAML build configuration file")
	fs.Var(&c.Mode, "builder", "builder mode (values: equal-number-of-bytes, single-pass-fixed-height, equal-number-of-bytes-fixed-layers)")
	fs.StringVar(&f.drafters, "drafters", drafter.FormatKinds(c.Drafters), "comma-separated model drafters")
	fs.Uint64Var(&c.LowLoad, "low_load", c.LowLoad, "smallest error bound or keys per segment tried")
	fs.Uint64Var(&c.HighLoad, "high_load", c.HighLoad, "largest error bound or keys per segment tried")
	fs.Float64Var(&c.StepLoad, "step_load", c.StepLoad, "growth factor between tried loads")
	fs.IntVar(&c.TargetLayers, "target_layers", 0, "number of index layers for the fixed-layers builder")
	fs.Var(&c.BlockSize, "blocksize", "storage block size")
	fs.IntVar(&c.MaxBlocks, "maxblocks", c.MaxBlocks, "blocks per layer object before it is sealed")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel drafting workers")
	fs.StringVar(&f.Profile, "profile", "", "storage profile preset (values: nvme, nfs, blob)")
	fs.Int64Var(&f.LatencyNS, "affine_latency_ns", int64(DefaultLatency), "affine storage profile latency in nanoseconds")
	fs.Float64Var(&f.BandwidthMBps, "affine_bandwidth_mbps", DefaultBandwidthMBps, "affine storage profile bandwidth in MB/s")
}

func (f *Flags) isSet(name string) bool {
	var set bool
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// Config returns the validated build configuration.
func (f *Flags) Config() (builder.Config, error) {
	config := f.config
	if f.ConfigPath != "" {
		var err error
		if config, err = builder.LoadConfig(f.ConfigPath); err != nil {
			return builder.Config{}, err
		}
		f.override(&config)
	}
	if f.ConfigPath == "" || f.isSet("drafters") {
		kinds, err := drafter.ParseKinds(f.drafters)
		if err != nil {
			return builder.Config{}, err
		}
		config.Drafters = kinds
	}
	return config, config.Validate()
}

func (f *Flags) override(config *builder.Config) {
	c := f.config
	for name, apply := range map[string]func(){
		"builder":       func() { config.Mode = c.Mode },
		"low_load":      func() { config.LowLoad = c.LowLoad },
		"high_load":     func() { config.HighLoad = c.HighLoad },
		"step_load":     func() { config.StepLoad = c.StepLoad },
		"target_layers": func() { config.TargetLayers = c.TargetLayers },
		"blocksize":     func() { config.BlockSize = c.BlockSize },
		"maxblocks":     func() { config.MaxBlocks = c.MaxBlocks },
		"workers":       func() { config.Workers = c.Workers },
	} {
		if f.isSet(name) {
			apply()
		}
	}
}

// StorageProfile returns the named preset if one was given and otherwise
// the affine profile described by the latency and bandwidth flags.
func (f *Flags) StorageProfile() (*profile.Affine, error) {
	if f.Profile != "" {
		return profile.Lookup(f.Profile)
	}
	return profile.FromFlags(f.LatencyNS, f.BandwidthMBps)
}
