package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// LinkType is the closed set of directed relationship types between
// documents. Each type has a defined reverse; the reverse lookup lives in the
// links package alongside the traversal logic.
type LinkType string

const (
	LinkParentChild   LinkType = "parent-child"
	LinkChildParent   LinkType = "child-parent"
	LinkReference     LinkType = "reference"
	LinkReferencedBy  LinkType = "referenced-by"
	LinkSupersedes    LinkType = "supersedes"
	LinkSupersededBy  LinkType = "superseded-by"
	LinkImplements    LinkType = "implements"
	LinkImplementedBy LinkType = "implemented-by"
	LinkRelated       LinkType = "related"
)

// LinkStrength is an advisory weight on an edge.
type LinkStrength string

const (
	StrengthStrong LinkStrength = "strong"
	StrengthMedium LinkStrength = "medium"
	StrengthWeak   LinkStrength = "weak"
)

// DocumentLink is a directed edge between two documents. At most one edge of
// a given type exists between an ordered pair; self-loops are rejected. When
// IsBidirectional is set, a mirror edge with the reverse type exists and is
// created and removed atomically with this one.
type DocumentLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	SourceDocumentID uint `gorm:"not null;uniqueIndex:idx_document_links_edge;index:idx_document_links_source" json:"sourceDocumentId"`
	TargetDocumentID uint `gorm:"not null;uniqueIndex:idx_document_links_edge;index:idx_document_links_target" json:"targetDocumentId"`

	LinkType LinkType `gorm:"type:varchar(20);not null;uniqueIndex:idx_document_links_edge" json:"linkType"`

	IsBidirectional bool         `gorm:"not null;default:false" json:"isBidirectional"`
	Strength        LinkStrength `gorm:"type:varchar(10);not null;default:'medium'" json:"strength"`

	CreatedBy string `gorm:"type:varchar(100)" json:"createdBy,omitempty"`
}

// TableName specifies the table name.
func (DocumentLink) TableName() string {
	return "document_links"
}

// Create inserts the edge after validating required fields. The no-self-loop
// and duplicate-edge invariants are enforced by the link graph before this is
// called; the unique index backstops the duplicate check.
func (l *DocumentLink) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(l,
		validation.Field(&l.SourceDocumentID, validation.Required),
		validation.Field(&l.TargetDocumentID, validation.Required),
		validation.Field(&l.LinkType, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&l).Error
}

// FindLink retrieves the edge for an ordered (source, target, type) triple.
func FindLink(db *gorm.DB, sourceID, targetID uint, linkType LinkType) (*DocumentLink, error) {
	var link DocumentLink
	err := db.Where(
		"source_document_id = ? AND target_document_id = ? AND link_type = ?",
		sourceID, targetID, linkType,
	).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// OutboundLinks retrieves all edges originating from a document.
func OutboundLinks(db *gorm.DB, documentID uint) ([]DocumentLink, error) {
	var links []DocumentLink
	err := db.Where("source_document_id = ?", documentID).
		Order("id ASC").
		Find(&links).Error
	return links, err
}

// InboundLinks retrieves all edges pointing at a document.
func InboundLinks(db *gorm.DB, documentID uint) ([]DocumentLink, error) {
	var links []DocumentLink
	err := db.Where("target_document_id = ?", documentID).
		Order("id ASC").
		Find(&links).Error
	return links, err
}
