package charm

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rootCommand struct {
	verbose bool
}

func (*rootCommand) Run(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	return ErrNoRun
}

type leafCommand struct {
	parent *rootCommand
	n      int
	got    *[]string
}

func (c *leafCommand) Run(args []string) error {
	*c.got = append(args, map[bool]string{true: "verbose", false: "quiet"}[c.parent.verbose])
	return nil
}

func tree(got *[]string) *Spec {
	root := &Spec{
		Name:  "tool",
		Usage: "tool [options] <command>",
		Short: "a tool",
		New: func(_ Command, f *flag.FlagSet) (Command, error) {
			c := &rootCommand{}
			f.BoolVar(&c.verbose, "v", false, "verbose output")
			return c, nil
		},
	}
	root.Add(&Spec{
		Name:  "leaf",
		Usage: "leaf [-n count] args...",
		Short: "a leaf",
		Long:  "Leaf does a thing.",
		New: func(parent Command, f *flag.FlagSet) (Command, error) {
			c := &leafCommand{parent: parent.(*rootCommand), got: got}
			f.IntVar(&c.n, "n", 1, "count")
			return c, nil
		},
	})
	root.Add(Help)
	return root
}

func captureHelp(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	saved := helpOutput
	helpOutput = &buf
	t.Cleanup(func() { helpOutput = saved })
	return &buf
}

func TestExecRoot(t *testing.T) {
	var got []string
	root := tree(&got)
	require.NoError(t, root.ExecRoot([]string{"-v", "leaf", "-n", "2", "a", "b"}))
	assert.Equal(t, []string{"a", "b", "verbose"}, got)

	err := root.ExecRoot([]string{"bogus"})
	assert.EqualError(t, err, `"tool": no such sub-command "bogus": options are: leaf, help`)

	err = root.ExecRoot([]string{"leaf", "-x"})
	assert.ErrorContains(t, err, "flag provided but not defined")
}

func TestHelp(t *testing.T) {
	buf := captureHelp(t)
	var got []string
	root := tree(&got)
	require.NoError(t, root.ExecRoot(nil))
	assert.Contains(t, buf.String(), "leaf - a leaf")

	buf.Reset()
	require.NoError(t, root.ExecRoot([]string{"leaf", "-h"}))
	assert.Contains(t, buf.String(), "-n count")
	assert.Contains(t, buf.String(), "[tool flags]")

	buf.Reset()
	require.NoError(t, root.ExecRoot([]string{"help", "leaf"}))
	assert.Contains(t, buf.String(), "Leaf does a thing.")

	assert.Error(t, root.ExecRoot([]string{"help", "nope"}))
	assert.Nil(t, got)
}
