package charm

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

type path []*instance

func (p path) last() *instance {
	return p[len(p)-1]
}

func (p path) pathname() string {
	var names []string
	for _, i := range p {
		names = append(names, i.spec.Name)
	}
	return strings.Join(names, " ")
}

func (p path) subCommands() string {
	var names []string
	for _, child := range p.last().spec.children {
		names = append(names, child.Name)
	}
	return strings.Join(names, ", ")
}

func (p path) run(args []string) error {
	err := p.last().command.Run(args)
	if err == ErrNoRun {
		if len(args) == 0 {
			err = fmt.Errorf("%q: requires a sub-command: %s", p.pathname(), p.subCommands())
		} else {
			err = fmt.Errorf("%q: no such sub-command %q: options are: %s", p.pathname(), args[0], p.subCommands())
		}
	}
	return err
}

// parse walks args down the command tree, creating an instance for each
// command named and parsing its flags.  It returns the path of instances,
// and the remaining positional arguments.
func parse(spec *Spec, args []string) (path, []string, error) {
	var p path
	var parent Command
	for {
		inst, err := newInstance(parent, spec)
		if err != nil {
			return nil, nil, err
		}
		p = append(p, inst)
		if err := inst.flags.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return p, nil, NeedHelp
			}
			return p, nil, fmt.Errorf("%s: %w", p.pathname(), err)
		}
		args = inst.flags.Args()
		if len(args) == 0 {
			return p, args, nil
		}
		child := spec.lookupSub(args[0])
		if child == nil {
			return p, args, nil
		}
		spec, parent, args = child, inst.command, args[1:]
	}
}

// parseHelp builds the path for the command names in args without
// parsing any flags.
func parseHelp(spec *Spec, args []string) (path, error) {
	var p path
	var parent Command
	for {
		inst, err := newInstance(parent, spec)
		if err != nil {
			return nil, err
		}
		p = append(p, inst)
		if len(args) == 0 {
			return p, nil
		}
		child := spec.lookupSub(args[0])
		if child == nil {
			return nil, fmt.Errorf("no such command: %s", strings.Join(append([]string{p.pathname()}, args[0]), " "))
		}
		spec, parent, args = child, inst.command, args[1:]
	}
}
