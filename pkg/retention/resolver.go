// Package retention resolves the most specific applicable retention policy
// for a document and computes, extends, and enforces destruction dates.
package retention

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
)

// Retention arithmetic uses fixed-length years and months so computed dates
// are reproducible regardless of when the calculation runs.
const (
	daysPerYear  = 365
	daysPerMonth = 30
)

// Resolver answers retention policy questions.
type Resolver struct {
	db    *gorm.DB
	sink  audit.Sink
	log   hclog.Logger
	clock func() time.Time
}

// NewResolver creates a retention resolver.
func NewResolver(db *gorm.DB, sink audit.Sink, log hclog.Logger) *Resolver {
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Resolver{
		db:    db,
		sink:  sink,
		log:   log.Named("retention"),
		clock: time.Now,
	}
}

// GetApplicablePolicy resolves the single best-matching policy for a
// document using the six-tier specificity order, scanning one ordered
// candidate list instead of issuing per-tier queries. Returns nil when no
// policy matches; the document's own RetentionYears field is then
// authoritative.
func (r *Resolver) GetApplicablePolicy(ctx context.Context, documentID uint) (*models.RetentionPolicy, error) {
	db := r.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	return r.resolve(db, &doc)
}

// resolve picks the most specific matching policy. Policies are scanned in
// name order, so among equally specific matches the first name wins; the
// tie-break is deterministic and visible in the policy list.
func (r *Resolver) resolve(db *gorm.DB, doc *models.Document) (*models.RetentionPolicy, error) {
	policies, err := models.ListRetentionPolicies(db)
	if err != nil {
		return nil, fmt.Errorf("error listing retention policies: %w", err)
	}

	var best *models.RetentionPolicy
	for i := range policies {
		p := &policies[i]
		if !p.Matches(doc) {
			continue
		}
		if best == nil || p.Specificity() > best.Specificity() {
			best = p
		}
	}
	return best, nil
}

// CalculateDestructionDate computes and stores the destruction date for a
// document: fromDate (default: effective date, else creation date) plus the
// resolved policy's retention span, or the document's own RetentionYears when
// no policy matches.
func (r *Resolver) CalculateDestructionDate(ctx context.Context, documentID uint, fromDate *time.Time) (time.Time, error) {
	db := r.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return time.Time{}, fmt.Errorf("error loading document: %w", err)
	}

	policy, err := r.resolve(db, &doc)
	if err != nil {
		return time.Time{}, err
	}

	years := doc.RetentionYears
	months := 0
	if policy != nil {
		years = policy.RetentionYears
		months = policy.RetentionMonths
	}

	base := doc.CreatedAt
	if doc.EffectiveDate != nil {
		base = *doc.EffectiveDate
	}
	if fromDate != nil {
		base = *fromDate
	}

	destruction := base.AddDate(0, 0, years*daysPerYear+months*daysPerMonth)

	updates := map[string]interface{}{"destruction_date": destruction}
	if policy != nil {
		updates["retention_years"] = policy.RetentionYears
	}
	if err := db.Model(&models.Document{}).
		Where("id = ?", documentID).
		Updates(updates).Error; err != nil {
		return time.Time{}, fmt.Errorf("error storing destruction date: %w", err)
	}

	r.log.Debug("calculated destruction date",
		"document_id", documentID,
		"destruction_date", destruction,
	)

	return destruction, nil
}

// ExtendRetention adds years to the current destruction date additively,
// preserving any manually granted extensions rather than recomputing from
// scratch. A document without a destruction date gets one calculated first.
func (r *Resolver) ExtendRetention(ctx context.Context, documentID uint, years int, actorID string) (time.Time, error) {
	if years <= 0 {
		return time.Time{}, dcerr.New(dcerr.CodeConfigurationError,
			"retention extension must be at least one year, got %d", years)
	}

	db := r.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return time.Time{}, fmt.Errorf("error loading document: %w", err)
	}

	current := doc.DestructionDate
	if current == nil {
		calculated, err := r.CalculateDestructionDate(ctx, documentID, nil)
		if err != nil {
			return time.Time{}, err
		}
		current = &calculated
	}

	extended := current.AddDate(0, 0, years*daysPerYear)

	if err := db.Model(&models.Document{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"destruction_date": extended,
			"retention_years":  doc.RetentionYears + years,
		}).Error; err != nil {
		return time.Time{}, fmt.Errorf("error extending retention: %w", err)
	}

	entry := audit.NewEntry("retention.extend", actorID)
	entry.DocumentID = documentID
	entry.DocumentUUID = doc.DocumentUUID
	entry.Before = map[string]any{"destruction_date": current}
	entry.After = map[string]any{"destruction_date": extended, "added_years": years}
	if err := r.sink.Append(ctx, entry); err != nil {
		r.log.Warn("failed to append audit entry", "error", err)
	}

	return extended, nil
}

// DestroyDocument soft-deletes a document. When the governing policy requires
// approval for destruction, an approver must be named or the call fails with
// an approval-required error. The document number stays reserved forever.
func (r *Resolver) DestroyDocument(ctx context.Context, documentID uint, actorID, approvedBy string) error {
	db := r.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return fmt.Errorf("error loading document: %w", err)
	}

	policy, err := r.resolve(db, &doc)
	if err != nil {
		return err
	}
	if policy != nil && policy.RequireApprovalForDestruction && approvedBy == "" {
		return dcerr.New(dcerr.CodeApprovalRequired,
			"policy %q requires approval to destroy document %d", policy.PolicyName, documentID)
	}

	if err := db.Delete(&models.Document{}, documentID).Error; err != nil {
		return fmt.Errorf("error destroying document: %w", err)
	}

	r.log.Info("destroyed document",
		"document_id", documentID,
		"document_number", doc.DocumentNumber,
		"approved_by", approvedBy,
	)

	entry := audit.NewEntry("retention.destroy", actorID)
	entry.DocumentID = documentID
	entry.DocumentUUID = doc.DocumentUUID
	entry.Before = map[string]any{"document_number": doc.DocumentNumber}
	entry.After = map[string]any{"approved_by": approvedBy}
	if err := r.sink.Append(ctx, entry); err != nil {
		r.log.Warn("failed to append audit entry", "error", err)
	}

	return nil
}

// ListDueForDestruction returns live documents whose destruction date is at
// or before asOf. Intended for the external sweep job; the engine itself
// never schedules destruction.
func (r *Resolver) ListDueForDestruction(ctx context.Context, asOf time.Time) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("destruction_date IS NOT NULL AND destruction_date <= ?", asOf).
		Order("destruction_date ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing documents due for destruction: %w", err)
	}
	return docs, nil
}
