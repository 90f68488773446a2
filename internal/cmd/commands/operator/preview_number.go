package operator

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/curator/internal/cmd/base"
	"github.com/hashicorp-forge/curator/internal/config"
	"github.com/hashicorp-forge/curator/pkg/database"
	"github.com/hashicorp-forge/curator/pkg/numbering"
)

type PreviewNumberCommand struct {
	*base.Command

	flagConfig   string
	flagLevel    int
	flagCategory string
}

func (c *PreviewNumberCommand) Synopsis() string {
	return "Preview the next document number without consuming it"
}

func (c *PreviewNumberCommand) Help() string {
	return `Usage: curator operator preview-number

  This command renders the document number the next creation in the given
  level and category would receive. The sequence counter is not advanced.` +
		c.Flags().Help()
}

func (c *PreviewNumberCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("preview-number", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to curator config file",
	)
	f.IntVar(
		&c.flagLevel, "level", 0, "(Required) Document level (1-5).",
	)
	f.StringVar(
		&c.flagCategory, "category", "", "(Required) Document category code, e.g. PROC.",
	)

	return f
}

func (c *PreviewNumberCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagConfig == "" {
		ui.Error("config flag is required")
		return 1
	}
	if c.flagLevel < 1 || c.flagLevel > 5 {
		ui.Error("level must be between 1 and 5")
		return 1
	}
	if c.flagCategory == "" {
		ui.Error("category flag is required")
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error parsing config file: %v", err))
		return 1
	}

	settings, err := cfg.NumberingSettings()
	if err != nil {
		ui.Error(fmt.Sprintf("error in numbering configuration: %v", err))
		return 1
	}

	db, err := database.Connect(cfg.DatabaseSettings(), logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	authority := numbering.NewAuthority(db, settings, logger)
	number, err := authority.Preview(c.flagLevel, c.flagCategory)
	if err != nil {
		ui.Error(fmt.Sprintf("error previewing number: %v", err))
		return 1
	}

	ui.Output(number)
	return 0
}
