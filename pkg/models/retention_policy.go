package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// RetentionPolicy is a configuration entity, not tied to one document. Any of
// Level, DocumentType, and Category may be null, meaning wildcard. Policies
// form a partial order by specificity; resolution always picks the most
// specific match.
type RetentionPolicy struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PolicyName string `gorm:"type:varchar(100);uniqueIndex;not null" json:"policyName"`

	Level        *int    `json:"level,omitempty"`
	DocumentType *string `gorm:"type:varchar(50)" json:"documentType,omitempty"`
	Category     *string `gorm:"type:varchar(50)" json:"category,omitempty"`

	RetentionYears  int `gorm:"not null;default:0" json:"retentionYears"`
	RetentionMonths int `gorm:"not null;default:0" json:"retentionMonths"`

	AutoArchive                   bool `gorm:"not null;default:false" json:"autoArchive"`
	AutoDestroy                   bool `gorm:"not null;default:false" json:"autoDestroy"`
	RequireApprovalForDestruction bool `gorm:"not null;default:false" json:"requireApprovalForDestruction"`

	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
}

// TableName specifies the table name.
func (RetentionPolicy) TableName() string {
	return "retention_policies"
}

// Specificity materializes the six-tier priority order as a comparable rank.
// Higher is more specific:
//
//	5  level + type + category
//	4  level + type
//	3  level + category
//	2  level only
//	1  type + category
//	0  category only (and any weaker combination)
func (p *RetentionPolicy) Specificity() int {
	hasLevel := p.Level != nil
	hasType := p.DocumentType != nil && *p.DocumentType != ""
	hasCategory := p.Category != nil && *p.Category != ""

	switch {
	case hasLevel && hasType && hasCategory:
		return 5
	case hasLevel && hasType:
		return 4
	case hasLevel && hasCategory:
		return 3
	case hasLevel:
		return 2
	case hasType && hasCategory:
		return 1
	default:
		return 0
	}
}

// Matches reports whether the policy applies to a document. Null policy
// fields are wildcards.
func (p *RetentionPolicy) Matches(doc *Document) bool {
	if p.Level != nil && *p.Level != doc.Level {
		return false
	}
	if p.DocumentType != nil && *p.DocumentType != "" && *p.DocumentType != doc.DocumentType {
		return false
	}
	if p.Category != nil && *p.Category != "" && *p.Category != doc.Category {
		return false
	}
	return true
}

// Create inserts the policy after validating required fields.
func (p *RetentionPolicy) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.PolicyName, validation.Required),
		validation.Field(&p.RetentionYears, validation.Min(0)),
		validation.Field(&p.RetentionMonths, validation.Min(0), validation.Max(11)),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&p).Error
}

// ListRetentionPolicies retrieves all policies.
func ListRetentionPolicies(db *gorm.DB) ([]RetentionPolicy, error) {
	var policies []RetentionPolicy
	err := db.Order("policy_name ASC").Find(&policies).Error
	return policies, err
}
