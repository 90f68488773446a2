// Package documents composes the numbering authority and retention resolver
// into the document creation operation: the generated number, the document
// row, and the consumed sequence value commit or roll back together.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/audit"
	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
	"github.com/hashicorp-forge/curator/pkg/numbering"
	"github.com/hashicorp-forge/curator/pkg/retention"
)

// Service creates and loads documents.
type Service struct {
	db        *gorm.DB
	authority *numbering.Authority
	resolver  *retention.Resolver
	sink      audit.Sink
	log       hclog.Logger
}

// NewService creates a document service.
func NewService(
	db *gorm.DB,
	authority *numbering.Authority,
	resolver *retention.Resolver,
	sink audit.Sink,
	log hclog.Logger,
) *Service {
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{
		db:        db,
		authority: authority,
		resolver:  resolver,
		sink:      sink,
		log:       log.Named("documents"),
	}
}

// CreateDocumentInput describes a new controlled document.
type CreateDocumentInput struct {
	Title        string
	Level        int
	Category     string
	DocumentType string
	Standard     string
	Tags         []string

	// ManualNumber bypasses auto-numbering when set. Validated for shape and
	// uniqueness.
	ManualNumber string

	ParentDocumentID *uint
	OwnerID          string
	ActorID          string

	DoerID     string
	CheckerID  string
	ApproverID string

	EffectiveDate  *time.Time
	RetentionYears int
}

// CreateDocument stamps an identifier and creates the document in one
// transaction, then resolves the applicable retention policy and stores the
// initial destruction date. New documents start in Draft at version 1.0.
func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput) (*models.Document, error) {
	retentionYears := in.RetentionYears
	if retentionYears <= 0 {
		retentionYears = 3
	}

	doc := models.Document{
		Title:            in.Title,
		Level:            in.Level,
		Category:         in.Category,
		DocumentType:     in.DocumentType,
		Standard:         in.Standard,
		Tags:             in.Tags,
		ParentDocumentID: in.ParentDocumentID,
		OwnerID:          in.OwnerID,
		DoerID:           in.DoerID,
		CheckerID:        in.CheckerID,
		ApproverID:       in.ApproverID,
		EffectiveDate:    in.EffectiveDate,
		RetentionYears:   retentionYears,
		Status:           models.StatusDraft,
		CurrentVersion:   "1.0",
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.authority.Generate(tx, in.Level, in.Category, in.ManualNumber)
		if err != nil {
			return err
		}
		doc.DocumentNumber = number

		if in.ParentDocumentID != nil {
			var parent models.Document
			if err := parent.Get(tx, *in.ParentDocumentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dcerr.New(dcerr.CodeNotFound,
						"parent document %d not found", *in.ParentDocumentID)
				}
				return fmt.Errorf("error loading parent document: %w", err)
			}
		}

		return doc.Create(tx)
	})
	if err != nil {
		return nil, err
	}

	// Retention resolution runs once at creation. A failure here leaves the
	// document without a destruction date, which the sweep surfaces; it does
	// not unwind the creation.
	if _, err := s.resolver.CalculateDestructionDate(ctx, doc.ID, nil); err != nil {
		s.log.Warn("failed to calculate initial destruction date",
			"document_id", doc.ID,
			"error", err,
		)
	}

	s.log.Info("created document",
		"document_id", doc.ID,
		"document_number", doc.DocumentNumber,
		"level", doc.Level,
		"category", doc.Category,
	)

	entry := audit.NewEntry("document.create", in.ActorID)
	entry.DocumentID = doc.ID
	entry.DocumentUUID = doc.DocumentUUID
	entry.After = map[string]any{
		"document_number": doc.DocumentNumber,
		"title":           doc.Title,
		"level":           doc.Level,
		"category":        doc.Category,
	}
	if err := s.sink.Append(ctx, entry); err != nil {
		s.log.Warn("failed to append audit entry", "error", err)
	}

	// Re-read so the caller sees the stored destruction date.
	var created models.Document
	if err := created.Get(s.db.WithContext(ctx), doc.ID); err != nil {
		return nil, fmt.Errorf("error reloading created document: %w", err)
	}
	return &created, nil
}

// GetDocument loads a document by ID.
func (s *Service) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := doc.Get(s.db.WithContext(ctx), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %d not found", id)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}
	return &doc, nil
}

// GetDocumentByNumber loads a document by its generated number.
func (s *Service) GetDocumentByNumber(ctx context.Context, number string) (*models.Document, error) {
	var doc models.Document
	if err := doc.GetByNumber(s.db.WithContext(ctx), number); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %q not found", number)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}
	return &doc, nil
}
