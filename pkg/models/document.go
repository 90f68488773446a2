package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStatus is the closed set of workflow states a document can be in.
// The legal transitions between statuses are defined by the workflow engine's
// transition table, not here.
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "Draft"
	StatusSubmitted        DocumentStatus = "Submitted"
	StatusUnderReview      DocumentStatus = "UnderReview"
	StatusApproved         DocumentStatus = "Approved"
	StatusRejected         DocumentStatus = "Rejected"
	StatusRevisionRequired DocumentStatus = "RevisionRequired"
	StatusCancelled        DocumentStatus = "Cancelled"
)

// IsTerminal reports whether no further workflow transitions are possible.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Document is the identity record for a controlled document. The numeric ID,
// stable UUID, and generated DocumentNumber are all immutable once assigned;
// a document number is never reassigned, even after soft deletion.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Soft delete: destroyed documents stay on the table so their numbers
	// remain reserved.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// DocumentUUID is a stable global identifier, independent of the
	// human-readable document number.
	DocumentUUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"documentUuid"`

	// DocumentNumber is the generated human-readable identifier,
	// e.g. "L3-PROC-2024-0001". Assigned exactly once.
	DocumentNumber string `gorm:"type:varchar(100);uniqueIndex;not null" json:"documentNumber"`

	Title string `gorm:"type:varchar(500);not null" json:"title"`

	// Level is the 1-5 document authority classification, fixed at creation.
	Level int `gorm:"not null;index:idx_documents_level_category" json:"level"`

	Category     string `gorm:"type:varchar(50);not null;index:idx_documents_level_category" json:"category"`
	DocumentType string `gorm:"type:varchar(50);index" json:"documentType,omitempty"`

	// Standard is the external standard this document implements
	// (e.g. "ISO 17025"). Used by similarity ranking only.
	Standard string `gorm:"type:varchar(100)" json:"standard,omitempty"`

	Tags []string `gorm:"serializer:json" json:"tags,omitempty"`

	Status DocumentStatus `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`

	// CurrentVersion is the "major.minor" version string; RevisionNumber is a
	// monotonic counter across all version and revision activity.
	CurrentVersion string `gorm:"type:varchar(20);not null;default:'1.0'" json:"currentVersion"`
	RevisionNumber int    `gorm:"not null;default:0" json:"revisionNumber"`

	ParentDocumentID *uint `gorm:"index" json:"parentDocumentId,omitempty"`

	OwnerID string `gorm:"type:varchar(100)" json:"ownerId,omitempty"`

	// Workflow role assignments. Empty means unassigned; the workflow engine
	// auto-resolves from the approval matrix where one is configured.
	DoerID     string `gorm:"type:varchar(100)" json:"doerId,omitempty"`
	CheckerID  string `gorm:"type:varchar(100)" json:"checkerId,omitempty"`
	ApproverID string `gorm:"type:varchar(100)" json:"approverId,omitempty"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`

	// EffectiveDate anchors retention calculation; creation date is the
	// fallback.
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`

	// RetentionYears is authoritative only when no retention policy matches.
	RetentionYears  int        `gorm:"not null;default:3" json:"retentionYears"`
	DestructionDate *time.Time `json:"destructionDate,omitempty"`
}

// TableName specifies the table name.
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate hook to ensure DocumentUUID is set.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentUUID == uuid.Nil {
		d.DocumentUUID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	return nil
}

// Create creates the document after validating required fields.
func (d *Document) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.DocumentNumber, validation.Required),
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Level, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&d.Category, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&d).Error
}

// Get retrieves a document by ID. Soft-deleted documents are not returned.
func (d *Document) Get(db *gorm.DB, id uint) error {
	return db.First(&d, id).Error
}

// GetByNumber retrieves a document by its generated number.
func (d *Document) GetByNumber(db *gorm.DB, number string) error {
	return db.Where("document_number = ?", number).First(&d).Error
}

// NumberExists reports whether any document, including soft-deleted ones,
// already holds the given number. Deleted documents keep their numbers
// reserved.
func NumberExists(db *gorm.DB, number string) (bool, error) {
	var count int64
	err := db.Unscoped().
		Model(&Document{}).
		Where("document_number = ?", number).
		Count(&count).Error
	return count > 0, err
}
