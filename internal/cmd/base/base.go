package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by all CLI commands to provide shared dependencies.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// NewCommand creates a base command with the given logger and UI.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
	}
}

// FlagSet wraps flag.FlagSet so commands can render flag usage into their
// help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a FlagSet from a standard flag set.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the defined flags formatted for inclusion in command help
// output.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n\n")

	f.VisitAll(func(fl *flag.Flag) {
		buf.WriteString("  -" + fl.Name)
		if fl.DefValue != "" {
			buf.WriteString(" (default: " + fl.DefValue + ")")
		}
		buf.WriteString("\n      " + fl.Usage + "\n")
	})

	return buf.String()
}
