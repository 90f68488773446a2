package operator

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/curator/internal/cmd/base"
	"github.com/hashicorp-forge/curator/internal/config"
	"github.com/hashicorp-forge/curator/pkg/database"
	"github.com/hashicorp-forge/curator/pkg/retention"
)

type SeedPoliciesCommand struct {
	*base.Command

	flagConfig   string
	flagPolicies string
	flagDryRun   bool
}

func (c *SeedPoliciesCommand) Synopsis() string {
	return "Load retention policies from a YAML file into the database"
}

func (c *SeedPoliciesCommand) Help() string {
	return `Usage: curator operator seed-policies

  This command loads retention policies from a YAML file and upserts them
  into the database, keyed by policy name. Existing policies with the same
  name are updated in place.` +
		c.Flags().Help()
}

func (c *SeedPoliciesCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("seed-policies", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to curator config file",
	)
	f.StringVar(
		&c.flagPolicies, "policies", "",
		"Path to the policies YAML file. Defaults to retention.policies_file from the config.",
	)
	f.BoolVar(
		&c.flagDryRun, "dry-run", false,
		"Only print what would be done without making changes.",
	)

	return f
}

func (c *SeedPoliciesCommand) Run(args []string) int {
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

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error parsing config file: %v", err))
		return 1
	}

	policiesPath := c.flagPolicies
	if policiesPath == "" && cfg.Retention != nil {
		policiesPath = cfg.Retention.PoliciesFile
	}
	if policiesPath == "" {
		ui.Error("no policies file: pass -policies or set retention.policies_file in the config")
		return 1
	}

	policies, err := retention.LoadPolicyFile(policiesPath)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading policies file: %v", err))
		return 1
	}
	ui.Info(fmt.Sprintf("Loaded %d policies from %s", len(policies), policiesPath))

	if c.flagDryRun {
		for _, p := range policies {
			ui.Info(fmt.Sprintf("  would upsert policy %q (retention: %dy %dm)",
				p.PolicyName, p.RetentionYears, p.RetentionMonths))
		}
		ui.Warn("DRY RUN completed - no changes were made")
		return 0
	}

	db, err := database.Connect(cfg.DatabaseSettings(), logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	if err := retention.SeedPolicies(db, policies); err != nil {
		ui.Error(fmt.Sprintf("error seeding policies: %v", err))
		return 1
	}

	ui.Info(fmt.Sprintf("Seeded %d retention policies", len(policies)))
	return 0
}
