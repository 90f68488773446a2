// Package numbering generates collision-free, human-readable document
// identifiers from per-(level, category, year) monotonic counters and
// configurable format templates.
package numbering

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

// DefaultTemplate renders numbers like "L3-PROC-2024-0001".
const DefaultTemplate = "L{LEVEL}-{CATEGORY}-{YEAR}-{SEQ}"

// claimAttempts bounds the compare-and-swap loop on the sequence counter.
// Contention past this point indicates something is badly wrong with the
// underlying isolation level.
const claimAttempts = 10

// LevelSettings configures numbering behavior for one document level.
type LevelSettings struct {
	// Template overrides the default format template for this level.
	Template string

	Prefix string
	Suffix string

	// ManualOnly disables auto-numbering: callers must supply a manual
	// number or creation fails with a configuration error.
	ManualOnly bool
}

// Settings configures the numbering authority.
type Settings struct {
	// DefaultTemplate applies where neither the sequence row nor the level
	// configures one. Empty means DefaultTemplate.
	DefaultTemplate string

	// Levels holds per-level overrides keyed by document level (1-5).
	Levels map[int]LevelSettings
}

// Authority generates document numbers. All mutation happens on the *gorm.DB
// handle passed per call so the sequence increment commits or rolls back with
// the document creation it belongs to.
type Authority struct {
	db       *gorm.DB
	settings Settings
	log      hclog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewAuthority creates a numbering authority.
func NewAuthority(db *gorm.DB, settings Settings, log hclog.Logger) *Authority {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Authority{
		db:       db,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// Generate produces a document number for the given level and category on tx.
// The sequence increment is part of tx: if the caller's transaction rolls
// back, the claimed number is never observed and never reused out of order.
//
// When manual is non-empty it is validated and checked for uniqueness instead
// of consuming a sequence number.
func (a *Authority) Generate(tx *gorm.DB, level int, category string, manual string) (string, error) {
	if manual != "" {
		return a.acceptManual(tx, manual)
	}

	lvl := a.settings.Levels[level]
	if lvl.ManualOnly {
		return "", dcerr.New(dcerr.CodeConfigurationError,
			"auto-numbering is disabled for level %d and no manual number was supplied", level)
	}

	year := a.now().Year()
	seq, err := models.GetOrCreateSequence(tx, level, category, year)
	if err != nil {
		return "", fmt.Errorf("error loading number sequence: %w", err)
	}

	claimed := 0
	for attempt := 0; ; attempt++ {
		n, ok, err := seq.ClaimNext(tx)
		if err != nil {
			return "", fmt.Errorf("error claiming sequence number: %w", err)
		}
		if ok {
			claimed = n
			break
		}
		if attempt+1 >= claimAttempts {
			return "", fmt.Errorf("could not claim sequence number for level=%d category=%s year=%d after %d attempts",
				level, category, year, claimAttempts)
		}
		if err := seq.Reload(tx); err != nil {
			return "", fmt.Errorf("error reloading number sequence: %w", err)
		}
	}

	number := a.render(seq, lvl, level, category, year, claimed)

	a.log.Debug("generated document number",
		"number", number,
		"level", level,
		"category", category,
		"year", year,
		"sequence", claimed,
	)

	return number, nil
}

// Preview renders the number the next Generate call would produce for the
// given level and category without consuming a sequence value. Intended for
// UI preview and format auditing.
func (a *Authority) Preview(level int, category string) (string, error) {
	lvl := a.settings.Levels[level]
	if lvl.ManualOnly {
		return "", dcerr.New(dcerr.CodeConfigurationError,
			"auto-numbering is disabled for level %d", level)
	}

	year := a.now().Year()

	// Read-only: an absent sequence row previews as sequence 1.
	next := 1
	var seq models.NumberSequence
	err := a.db.Where("level = ? AND category = ? AND year = ?", level, category, year).
		First(&seq).Error
	switch {
	case err == nil:
		next = seq.CurrentSequence + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		// keep next = 1
	default:
		return "", fmt.Errorf("error loading number sequence: %w", err)
	}

	return a.render(&seq, lvl, level, category, year, next), nil
}

// render picks the most specific template (sequence row > level > authority
// default) and expands it.
func (a *Authority) render(seq *models.NumberSequence, lvl LevelSettings, level int, category string, year, sequence int) string {
	template := seq.FormatTemplate
	if template == "" {
		template = lvl.Template
	}
	if template == "" {
		template = a.settings.DefaultTemplate
	}
	if template == "" {
		template = DefaultTemplate
	}

	prefix := seq.Prefix
	if prefix == "" {
		prefix = lvl.Prefix
	}

	return Render(template, TemplateData{
		Level:    level,
		Category: category,
		Year:     year,
		Sequence: sequence,
		Prefix:   prefix,
		Suffix:   lvl.Suffix,
	})
}

// acceptManual validates a manually supplied number and reserves it if no
// document, including soft-deleted ones, already holds it.
func (a *Authority) acceptManual(tx *gorm.DB, manual string) (string, error) {
	if err := validation.Validate(manual,
		validation.Required,
		validation.Length(5, 0),
		validation.By(func(interface{}) error {
			if !strings.ContainsAny(manual, "-_/.") {
				return fmt.Errorf("must contain a separator")
			}
			return nil
		}),
	); err != nil {
		return "", dcerr.Wrap(dcerr.CodeConfigurationError, err,
			"invalid manual document number %q", manual)
	}

	exists, err := models.NumberExists(tx, manual)
	if err != nil {
		return "", fmt.Errorf("error checking number uniqueness: %w", err)
	}
	if exists {
		return "", dcerr.New(dcerr.CodeDuplicateIdentifier,
			"document number %q is already in use", manual)
	}

	return manual, nil
}
