// Package units provides a byte-size type usable as a flag.Value and in
// YAML configuration, accepting values like "4KiB" or "1MB".
package units

import (
	"github.com/alecthomas/units"
)

type Bytes int64

func (b Bytes) String() string {
	return units.Base2Bytes(b).String()
}

func (b *Bytes) Set(s string) error {
	v, err := units.ParseStrictBytes(s)
	if err != nil {
		return err
	}
	*b = Bytes(v)
	return nil
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}
