package version

import (
	"github.com/hashicorp-forge/curator/internal/cmd/base"
	"github.com/hashicorp-forge/curator/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of this binary"
}

func (c *Command) Help() string {
	return `Usage: curator version

  This command prints the version of this binary.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
