package charm

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kr/text"
	"golang.org/x/term"
)

const tab = "    "

var Help = &Spec{
	Name:  "help",
	Usage: "help [command ...]",
	Short: "display help for a command",
	Long: `
For help on the top-level command just type "help".
For help on a subcommand, type "help command".`,
	New: func(Command, *flag.FlagSet) (Command, error) {
		return &helpCommand{}, nil
	},
}

type helpCommand struct{}

func (*helpCommand) Run(args []string) error {
	root := Help
	for root.parent != nil {
		root = root.parent
	}
	p, err := parseHelp(root, args)
	if err != nil {
		return err
	}
	displayHelp(p)
	return nil
}

var helpOutput io.Writer = os.Stderr

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func formatParagraph(body, tab string, lineWidth int) string {
	var chunks []string
	for _, paragraph := range strings.Split(body, "\n\n") {
		paragraph = strings.Join(strings.Fields(paragraph), " ")
		lines := strings.Split(text.Wrap(paragraph, lineWidth), "\n")
		chunks = append(chunks, strings.Join(lines, "\n"+tab))
	}
	return tab + strings.Join(chunks, "\n\n"+tab) + "\n\n"
}

func header(heading string) string {
	return "\033[1m" + heading + "\033[0m"
}

func helpItem(heading, body string) {
	fmt.Fprint(helpOutput, header(heading)+"\n"+tab+body+"\n\n")
}

func helpDesc(heading, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	lineWidth := terminalWidth() - len(tab) - 5
	fmt.Fprint(helpOutput, header(heading)+"\n"+formatParagraph(body, tab, lineWidth))
}

func helpList(heading string, lines []string) {
	fmt.Fprint(helpOutput, header(heading)+"\n"+tab+strings.Join(lines, "\n"+tab)+"\n\n")
}

func commands(target *Spec) []string {
	var lines []string
	for _, cmd := range target.children {
		lines = append(lines, cmd.Name+" - "+cmd.Short)
	}
	return lines
}

// options lists the flags of the last command followed by the flags of
// each enclosing command under its own heading.
func options(p path) []string {
	lines := p.last().options()
	if len(lines) == 0 {
		lines = []string{"no flags for this command"}
	}
	for k := len(p) - 2; k >= 0; k-- {
		opts := p[k].options()
		if len(opts) == 0 {
			continue
		}
		lines = append(lines, "", "["+path(p[:k+1]).pathname()+" flags]")
		lines = append(lines, opts...)
	}
	return lines
}

func displayHelp(p path) {
	spec := p.last().spec
	helpItem("NAME", spec.Name+" - "+spec.Short)
	helpItem("USAGE", spec.Usage)
	helpList("OPTIONS", options(p))
	if len(spec.children) > 0 {
		helpList("COMMANDS", commands(spec))
	}
	helpDesc("DESCRIPTION", spec.Long)
}
