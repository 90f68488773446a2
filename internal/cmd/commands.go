package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/curator/internal/cmd/base"
	"github.com/hashicorp-forge/curator/internal/cmd/commands/migrate"
	"github.com/hashicorp-forge/curator/internal/cmd/commands/operator"
	versioncmd "github.com/hashicorp-forge/curator/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: b}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{Command: b}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: b}, nil
		},
		"operator seed-policies": func() (cli.Command, error) {
			return &operator.SeedPoliciesCommand{Command: b}, nil
		},
		"operator preview-number": func() (cli.Command, error) {
			return &operator.PreviewNumberCommand{Command: b}, nil
		},
	}
}
