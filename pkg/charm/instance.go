package charm

import (
	"flag"
	"fmt"
	"io"
)

// instance is a command that has been created but not run.
type instance struct {
	spec    *Spec
	command Command
	flags   *flag.FlagSet
}

func newInstance(parent Command, spec *Spec) (*instance, error) {
	if spec.New == nil {
		return nil, fmt.Errorf("command '%s': New function is nil", spec.Name)
	}
	flags := flag.NewFlagSet(spec.Name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cmd, err := spec.New(parent, flags)
	if err != nil {
		return nil, err
	}
	return &instance{spec, cmd, flags}, nil
}

// options returns help lines for the flags of this instance.
func (i *instance) options() []string {
	var body []string
	i.flags.VisitAll(func(f *flag.Flag) {
		line := "-" + f.Name + " " + f.Usage
		if f.DefValue != "" {
			line = fmt.Sprintf("%s (default %q)", line, f.DefValue)
		}
		body = append(body, line)
	})
	return body
}
