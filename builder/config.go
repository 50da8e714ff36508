package builder

import (
	"math"
	"os"
	"runtime"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/drafter"
	"github.com/brimdata/airindex/model"
	"github.com/brimdata/airindex/pkg/units"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	// ModeBalance searches drafters and error bounds for the cheapest
	// layer at each step.
	ModeBalance Mode = "equal-number-of-bytes"
	// ModeSinglePass drafts every layer at HighLoad.
	ModeSinglePass Mode = "single-pass-fixed-height"
	// ModeFixedLayers builds exactly TargetLayers index layers.
	ModeFixedLayers Mode = "equal-number-of-bytes-fixed-layers"
)

func (m *Mode) Set(s string) error {
	switch mode := Mode(s); mode {
	case ModeBalance, ModeSinglePass, ModeFixedLayers:
		*m = mode
		return nil
	case "":
		*m = ModeBalance
		return nil
	}
	return aie.E(aie.Config, "unknown builder %q", s)
}

func (m Mode) String() string {
	return string(m)
}

type Config struct {
	Mode     Mode           `yaml:"builder"`
	Drafters []drafter.Kind `yaml:"drafters"`
	// LowLoad, HighLoad, and StepLoad bound the geometric sequence of
	// error bounds (or, for band_equal, keys per segment) tried at each
	// layer.
	LowLoad      uint64      `yaml:"low_load"`
	HighLoad     uint64      `yaml:"high_load"`
	StepLoad     float64     `yaml:"step_load"`
	TargetLayers int         `yaml:"target_layers"`
	BlockSize    units.Bytes `yaml:"block_size"`
	// MaxBlocks is the number of blocks written to a part object before
	// it is sealed and a new one started.
	MaxBlocks int `yaml:"max_blocks"`
	Workers   int `yaml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Mode:      ModeBalance,
		Drafters:  append([]drafter.Kind(nil), drafter.All...),
		LowLoad:   16,
		HighLoad:  1 << 20,
		StepLoad:  2,
		BlockSize: 4096,
		MaxBlocks: 1024,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// LoadConfig reads a YAML build configuration.  Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, aie.E(aie.Config, err)
	}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return Config{}, aie.E(aie.Config, "%s: %w", path, err)
	}
	return config, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeBalance, ModeSinglePass, ModeFixedLayers:
	default:
		return aie.E(aie.Config, "unknown builder %q", c.Mode)
	}
	if len(c.Drafters) == 0 {
		return aie.E(aie.Config, "no drafters given")
	}
	if c.HighLoad < c.LowLoad {
		return aie.E(aie.Config, "high_load (%d) is less than low_load (%d)", c.HighLoad, c.LowLoad)
	}
	if !(c.StepLoad > 1) || math.IsInf(c.StepLoad, 0) {
		return aie.E(aie.Config, "step_load must be greater than 1 (%g)", c.StepLoad)
	}
	if c.BlockSize < model.SegmentSize {
		return aie.E(aie.Config, "block size %s cannot hold a segment record", c.BlockSize)
	}
	if c.MaxBlocks < 1 {
		return aie.E(aie.Config, "max_blocks must be positive (%d)", c.MaxBlocks)
	}
	if c.Workers < 0 {
		return aie.E(aie.Config, "workers must not be negative (%d)", c.Workers)
	}
	if c.TargetLayers < 0 {
		return aie.E(aie.Config, "target_layers must not be negative (%d)", c.TargetLayers)
	}
	if c.Mode == ModeFixedLayers && c.TargetLayers == 0 {
		return aie.E(aie.Config, "builder %s requires target_layers", c.Mode)
	}
	if c.Mode != ModeFixedLayers && c.TargetLayers != 0 {
		return aie.E(aie.Config, "target_layers requires builder %s", ModeFixedLayers)
	}
	return nil
}

// Candidates returns the loads tried at each layer: LowLoad, then values
// growing by a factor of StepLoad (and by at least one), then HighLoad.
func (c Config) Candidates() []uint64 {
	loads := []uint64{c.LowLoad}
	for load := c.LowLoad; ; {
		f := math.Ceil(float64(load) * c.StepLoad)
		if f >= float64(c.HighLoad) {
			break
		}
		next := uint64(f)
		if next <= load {
			next = load + 1
		}
		if next >= c.HighLoad {
			break
		}
		loads = append(loads, next)
		load = next
	}
	if c.HighLoad != c.LowLoad {
		loads = append(loads, c.HighLoad)
	}
	return loads
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
