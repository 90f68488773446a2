package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// DocumentVersion is one immutable row per version transition of a document.
// Rows are append-only: "editing" a version means writing a new row and
// flipping IsCurrent on the prior row inside the same transaction. Exactly one
// row per document has IsCurrent set at any time.
type DocumentVersion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	DocumentID uint `gorm:"not null;index:idx_document_versions_doc" json:"documentId"`

	VersionNumber  string `gorm:"type:varchar(20);not null" json:"versionNumber"`
	RevisionNumber int    `gorm:"not null" json:"revisionNumber"`

	ChangeSummary string `gorm:"type:text" json:"changeSummary,omitempty"`

	// File metadata as returned by the external storage collaborator. The
	// engine never reads file contents; the checksum is an opaque string.
	FilePath     string `gorm:"type:varchar(500)" json:"filePath,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileChecksum string `gorm:"type:varchar(128)" json:"fileChecksum,omitempty"`

	ReleasedAt time.Time `gorm:"not null" json:"releasedAt"`
	IsCurrent  bool      `gorm:"not null;default:false;index:idx_document_versions_current" json:"isCurrent"`

	CreatedBy string `gorm:"type:varchar(100)" json:"createdBy,omitempty"`
}

// TableName specifies the table name.
func (DocumentVersion) TableName() string {
	return "document_versions"
}

// Create inserts the version row after validating required fields.
func (v *DocumentVersion) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(v,
		validation.Field(&v.DocumentID, validation.Required),
		validation.Field(&v.VersionNumber, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&v).Error
}

// GetCurrentVersion retrieves the current version row for a document.
func GetCurrentVersion(db *gorm.DB, documentID uint) (*DocumentVersion, error) {
	var version DocumentVersion
	err := db.Where("document_id = ? AND is_current = ?", documentID, true).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// ListVersions retrieves all version rows for a document, newest first.
func ListVersions(db *gorm.DB, documentID uint) ([]DocumentVersion, error) {
	var versions []DocumentVersion
	err := db.Where("document_id = ?", documentID).
		Order("id DESC").
		Find(&versions).Error
	return versions, err
}
