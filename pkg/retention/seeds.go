package retention

import (
	"fmt"
	"os"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp-forge/curator/pkg/models"
)

// policySeed is the YAML shape of one retention policy. Dates are free-form
// strings so operators can write "2024-01-01" or "Jan 1 2024" alike.
type policySeed struct {
	PolicyName                    string  `mapstructure:"policy_name"`
	Level                         *int    `mapstructure:"level"`
	DocumentType                  *string `mapstructure:"document_type"`
	Category                      *string `mapstructure:"category"`
	RetentionYears                int     `mapstructure:"retention_years"`
	RetentionMonths               int     `mapstructure:"retention_months"`
	AutoArchive                   bool    `mapstructure:"auto_archive"`
	AutoDestroy                   bool    `mapstructure:"auto_destroy"`
	RequireApprovalForDestruction bool    `mapstructure:"require_approval_for_destruction"`
	EffectiveFrom                 string  `mapstructure:"effective_from"`
}

// LoadPolicyFile parses a YAML retention policy seed file. All entries are
// validated before any is returned; errors across entries are aggregated so
// one pass reports every problem in the file.
func LoadPolicyFile(path string) ([]models.RetentionPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading policy file: %w", err)
	}

	var doc struct {
		Policies []map[string]any `yaml:"policies"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error parsing policy file: %w", err)
	}

	var (
		policies []models.RetentionPolicy
		result   *multierror.Error
	)
	for i, entry := range doc.Policies {
		var seed policySeed
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &seed,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("error building seed decoder: %w", err)
		}
		if err := decoder.Decode(entry); err != nil {
			result = multierror.Append(result, fmt.Errorf("policy %d: %w", i, err))
			continue
		}

		policy, err := seed.toPolicy()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("policy %d (%s): %w", i, seed.PolicyName, err))
			continue
		}
		policies = append(policies, policy)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return policies, nil
}

// toPolicy validates the seed and converts it to a model.
func (s policySeed) toPolicy() (models.RetentionPolicy, error) {
	errs := validation.Errors{
		"policy_name":      validation.Validate(s.PolicyName, validation.Required),
		"retention_years":  validation.Validate(s.RetentionYears, validation.Min(0)),
		"retention_months": validation.Validate(s.RetentionMonths, validation.Min(0), validation.Max(11)),
	}
	if err := errs.Filter(); err != nil {
		return models.RetentionPolicy{}, err
	}

	policy := models.RetentionPolicy{
		PolicyName:                    s.PolicyName,
		Level:                         s.Level,
		DocumentType:                  s.DocumentType,
		Category:                      s.Category,
		RetentionYears:                s.RetentionYears,
		RetentionMonths:               s.RetentionMonths,
		AutoArchive:                   s.AutoArchive,
		AutoDestroy:                   s.AutoDestroy,
		RequireApprovalForDestruction: s.RequireApprovalForDestruction,
	}

	if s.EffectiveFrom != "" {
		t, err := dateparse.ParseStrict(s.EffectiveFrom)
		if err != nil {
			return models.RetentionPolicy{}, fmt.Errorf("invalid effective_from %q: %w", s.EffectiveFrom, err)
		}
		policy.EffectiveFrom = &t
	}

	return policy, nil
}

// SeedPolicies upserts policies by name.
func SeedPolicies(db *gorm.DB, policies []models.RetentionPolicy) error {
	for i := range policies {
		p := policies[i]
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "policy_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"level", "document_type", "category",
				"retention_years", "retention_months",
				"auto_archive", "auto_destroy",
				"require_approval_for_destruction", "effective_from",
			}),
		}).Create(&p).Error
		if err != nil {
			return fmt.Errorf("error seeding policy %q: %w", p.PolicyName, err)
		}
	}
	return nil
}
