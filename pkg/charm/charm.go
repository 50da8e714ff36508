// Package charm is minimalist CLI framework inspired by cobra and urfave/cli.
package charm

import (
	"errors"
	"flag"
)

var (
	NeedHelp = errors.New("help")
	ErrNoRun = errors.New("no run method")
)

type Constructor func(Command, *flag.FlagSet) (Command, error)

type Command interface {
	Run([]string) error
}

type Spec struct {
	Name     string
	Usage    string
	Short    string
	Long     string
	New      Constructor
	children []*Spec
	parent   *Spec
}

func (c *Spec) Add(child *Spec) {
	c.children = append(c.children, child)
	child.parent = c
}

func (c *Spec) lookupSub(name string) *Spec {
	for _, child := range c.children {
		if name == child.Name {
			return child
		}
	}
	return nil
}

// ExecRoot parses args against the command tree rooted at s and runs the
// selected command.  A "-h" or "-help" flag anywhere, or a command that
// returns NeedHelp, prints help for the selected command instead.
func (s *Spec) ExecRoot(args []string) error {
	p, rest, err := parse(s, args)
	if err == nil {
		err = p.run(rest)
	}
	if errors.Is(err, NeedHelp) && p != nil {
		displayHelp(p)
		return nil
	}
	return err
}
