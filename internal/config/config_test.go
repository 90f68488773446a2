package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
log_level = "debug"

database {
  driver   = "postgres"
  host     = "localhost"
  port     = 5432
  user     = "curator"
  password = "secret"
  dbname   = "curator"
}

numbering {
  default_template = "L{LEVEL}-{CATEGORY}-{YEAR}-{SEQ}"

  level "1" {
    manual_only = true
  }

  level "4" {
    template = "{PREFIX}-{SEQ:5}"
    prefix   = "FRM"
  }
}

audit {
  sink = "kafka"
  kafka {
    brokers = ["localhost:9092"]
    topic   = "curator-audit"
  }
}

storage {
  backend = "local"
  path    = "/var/lib/curator/files"
}

retention {
  policies_file = "policies.yaml"
}
`)
		cfg, err := NewConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)

		dbCfg := cfg.DatabaseSettings()
		assert.Equal(t, "postgres", dbCfg.Driver)
		assert.Equal(t, 5432, dbCfg.Port)
		assert.Equal(t, "curator", dbCfg.DBName)

		settings, err := cfg.NumberingSettings()
		require.NoError(t, err)
		assert.Equal(t, "L{LEVEL}-{CATEGORY}-{YEAR}-{SEQ}", settings.DefaultTemplate)
		assert.True(t, settings.Levels[1].ManualOnly)
		assert.Equal(t, "FRM", settings.Levels[4].Prefix)

		require.NotNil(t, cfg.Audit)
		assert.Equal(t, "kafka", cfg.Audit.Sink)
		require.NotNil(t, cfg.Audit.Kafka)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Audit.Kafka.Brokers)

		require.NotNil(t, cfg.Retention)
		assert.Equal(t, "policies.yaml", cfg.Retention.PoliciesFile)
	})

	t.Run("sqlite minimal config", func(t *testing.T) {
		path := writeConfig(t, `
database {
  driver = "sqlite"
  path   = ".curator/curator.db"
}
`)
		cfg, err := NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.DatabaseSettings().Driver)

		settings, err := cfg.NumberingSettings()
		require.NoError(t, err)
		assert.Empty(t, settings.Levels)
	})

	t.Run("missing database block", func(t *testing.T) {
		path := writeConfig(t, `log_level = "info"`)
		_, err := NewConfig(path)
		require.Error(t, err)
	})

	t.Run("bad level label", func(t *testing.T) {
		path := writeConfig(t, `
database {
  driver = "sqlite"
  path   = "x.db"
}

numbering {
  level "nine" {
    prefix = "X"
  }
}
`)
		cfg, err := NewConfig(path)
		require.NoError(t, err)
		_, err = cfg.NumberingSettings()
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(t.TempDir(), "absent.hcl"))
		require.Error(t, err)
	})
}
