package migrate

import (
	"flag"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/internal/cmd/base"
	"github.com/hashicorp-forge/curator/internal/config"
	"github.com/hashicorp-forge/curator/pkg/database"
	"github.com/hashicorp-forge/curator/pkg/models"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Create or update the database schema"
}

func (c *Command) Help() string {
	return `Usage: curator migrate

  This command creates or updates the database schema to match the current
  models. It is safe to run repeatedly.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("migrate", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to curator config file",
	)

	return f
}

func (c *Command) Run(args []string) int {
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

	// The database may still be coming up when this runs as an init step, so
	// retry the connection with exponential backoff.
	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = database.Connect(cfg.DatabaseSettings(), logger)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(connect, bo); err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	ui.Info("Running schema migration...")
	if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
		ui.Error(fmt.Sprintf("error migrating schema: %v", err))
		return 1
	}

	ui.Info("Schema migration completed successfully")
	return 0
}
