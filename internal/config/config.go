// Package config loads the curator HCL configuration file and translates it
// into the typed configuration each subsystem consumes.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/hashicorp-forge/curator/pkg/database"
	"github.com/hashicorp-forge/curator/pkg/numbering"
)

// Config is the root of the curator configuration file.
type Config struct {
	// LogLevel sets the hclog level for all components ("trace" through
	// "error"). Defaults to "info".
	LogLevel string `hcl:"log_level,optional"`

	Database  *DatabaseConfig  `hcl:"database,block"`
	Numbering *NumberingConfig `hcl:"numbering,block"`
	Audit     *AuditConfig     `hcl:"audit,block"`
	Storage   *StorageConfig   `hcl:"storage,block"`
	Retention *RetentionConfig `hcl:"retention,block"`
}

// DatabaseConfig represents the database block.
type DatabaseConfig struct {
	Driver string `hcl:"driver,optional"` // "postgres" (default) or "sqlite"

	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	// Path is the SQLite database file when driver = "sqlite".
	Path string `hcl:"path,optional"`

	MaxIdleConns       int `hcl:"max_idle_conns,optional"`
	MaxOpenConns       int `hcl:"max_open_conns,optional"`
	ConnMaxLifetimeSec int `hcl:"conn_max_lifetime_seconds,optional"`
}

// NumberingConfig represents the numbering block.
type NumberingConfig struct {
	// DefaultTemplate applies to all levels that do not override it, e.g.
	// "L{LEVEL}-{CATEGORY}-{YEAR}-{SEQ}".
	DefaultTemplate string `hcl:"default_template,optional"`

	Levels []NumberingLevelConfig `hcl:"level,block"`
}

// NumberingLevelConfig represents a per-level numbering override, labeled by
// the document level ("1" through "5").
type NumberingLevelConfig struct {
	Level string `hcl:"level,label"`

	Template   string `hcl:"template,optional"`
	Prefix     string `hcl:"prefix,optional"`
	Suffix     string `hcl:"suffix,optional"`
	ManualOnly bool   `hcl:"manual_only,optional"`
}

// AuditConfig represents the audit block.
type AuditConfig struct {
	// Sink selects the audit destination: "log" (default), "kafka", or
	// "none".
	Sink string `hcl:"sink,optional"`

	Kafka *KafkaConfig `hcl:"kafka,block"`
}

// KafkaConfig represents Kafka broker settings for the audit sink.
type KafkaConfig struct {
	Brokers []string `hcl:"brokers"`
	Topic   string   `hcl:"topic,optional"`
}

// StorageConfig represents the storage block for document file content.
type StorageConfig struct {
	// Backend selects the file store: "local" (default) or "s3".
	Backend string `hcl:"backend,optional"`

	// Path is the root directory for the local backend.
	Path string `hcl:"path,optional"`

	S3 *S3Config `hcl:"s3,block"`
}

// S3Config represents S3 settings for the storage block.
type S3Config struct {
	Bucket   string `hcl:"bucket"`
	Prefix   string `hcl:"prefix,optional"`
	Region   string `hcl:"region,optional"`
	Endpoint string `hcl:"endpoint,optional"`
}

// RetentionConfig represents the retention block.
type RetentionConfig struct {
	// PoliciesFile points at a YAML file of retention policies seeded at
	// migration time.
	PoliciesFile string `hcl:"policies_file,optional"`
}

// NewConfig parses the HCL configuration file at the given path.
func NewConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration file: %w", err)
	}

	if cfg.Database == nil {
		return nil, fmt.Errorf("configuration file is missing the database block")
	}

	return &cfg, nil
}

// DatabaseSettings translates the database block into the connection config.
func (c *Config) DatabaseSettings() database.Config {
	d := c.Database
	return database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		DBName:          d.DBName,
		SSLMode:         d.SSLMode,
		Path:            d.Path,
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: time.Duration(d.ConnMaxLifetimeSec) * time.Second,
	}
}

// NumberingSettings translates the numbering block into authority settings.
// Level labels that do not parse as integers are rejected.
func (c *Config) NumberingSettings() (numbering.Settings, error) {
	settings := numbering.Settings{
		Levels: map[int]numbering.LevelSettings{},
	}
	if c.Numbering == nil {
		return settings, nil
	}

	settings.DefaultTemplate = c.Numbering.DefaultTemplate
	for _, lvl := range c.Numbering.Levels {
		n, err := strconv.Atoi(lvl.Level)
		if err != nil || n < 1 || n > 5 {
			return settings, fmt.Errorf(
				"numbering level label %q: must be an integer between 1 and 5", lvl.Level)
		}
		settings.Levels[n] = numbering.LevelSettings{
			Template:   lvl.Template,
			Prefix:     lvl.Prefix,
			Suffix:     lvl.Suffix,
			ManualOnly: lvl.ManualOnly,
		}
	}

	return settings, nil
}
