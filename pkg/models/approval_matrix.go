package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// ApprovalMatrixEntry configures the default Doer/Checker/Approver assignment
// for documents at a given level and category. Null fields are wildcards; the
// workflow engine picks the most specific matching entry when a document's
// role assignment is empty.
type ApprovalMatrixEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Level    *int    `gorm:"uniqueIndex:idx_approval_matrix_key" json:"level,omitempty"`
	Category *string `gorm:"type:varchar(50);uniqueIndex:idx_approval_matrix_key" json:"category,omitempty"`

	DoerID     string `gorm:"type:varchar(100)" json:"doerId,omitempty"`
	CheckerID  string `gorm:"type:varchar(100)" json:"checkerId,omitempty"`
	ApproverID string `gorm:"type:varchar(100)" json:"approverId,omitempty"`
}

// TableName specifies the table name.
func (ApprovalMatrixEntry) TableName() string {
	return "approval_matrix_entries"
}

// Create inserts the entry. At least one of the role assignments must be set
// for the entry to be useful.
func (m *ApprovalMatrixEntry) Create(db *gorm.DB) error {
	if err := validation.Validate(
		[]string{m.DoerID, m.CheckerID, m.ApproverID},
		validation.By(func(interface{}) error {
			if m.DoerID == "" && m.CheckerID == "" && m.ApproverID == "" {
				return fmt.Errorf("at least one role assignment is required")
			}
			return nil
		}),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&m).Error
}

// specificity ranks matrix entries: level+category beats level-only beats
// category-only beats the global wildcard.
func (m *ApprovalMatrixEntry) specificity() int {
	hasLevel := m.Level != nil
	hasCategory := m.Category != nil && *m.Category != ""
	switch {
	case hasLevel && hasCategory:
		return 3
	case hasLevel:
		return 2
	case hasCategory:
		return 1
	default:
		return 0
	}
}

// LookupApprovalMatrix returns the most specific matrix entry matching the
// document's level and category, or nil when nothing is configured.
func LookupApprovalMatrix(db *gorm.DB, doc *Document) (*ApprovalMatrixEntry, error) {
	var entries []ApprovalMatrixEntry
	if err := db.Find(&entries).Error; err != nil {
		return nil, err
	}

	var best *ApprovalMatrixEntry
	for i := range entries {
		e := &entries[i]
		if e.Level != nil && *e.Level != doc.Level {
			continue
		}
		if e.Category != nil && *e.Category != "" && *e.Category != doc.Category {
			continue
		}
		if best == nil || e.specificity() > best.specificity() {
			best = e
		}
	}
	return best, nil
}
