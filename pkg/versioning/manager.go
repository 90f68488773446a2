// Package versioning owns the major.minor version string and revision
// counter of a document and produces immutable version snapshots on change.
package versioning

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/audit"
	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
	"github.com/hashicorp-forge/curator/pkg/storage"
)

// Manager creates immutable document versions.
type Manager struct {
	db    *gorm.DB
	sink  audit.Sink
	log   hclog.Logger
	clock func() time.Time
}

// NewManager creates a version manager.
func NewManager(db *gorm.DB, sink audit.Sink, log hclog.Logger) *Manager {
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Manager{
		db:    db,
		sink:  sink,
		log:   log.Named("versioning"),
		clock: time.Now,
	}
}

// CreateVersionInput describes one version transition.
type CreateVersionInput struct {
	// IsMajor bumps the major component and resets minor to zero; otherwise
	// the minor component is incremented.
	IsMajor bool

	ChangeSummary string

	// FileRef is the metadata returned by the storage collaborator for the
	// new content, if any. The engine stores it opaquely.
	FileRef *storage.FileInfo

	ActorID string
}

// CreateVersion writes a new immutable version row, flips the previously
// current row, and updates the document's version fields — all in one
// transaction. The document's status is reset to Draft: approvals never carry
// across content changes.
func (m *Manager) CreateVersion(ctx context.Context, documentID uint, in CreateVersionInput) (string, error) {
	var (
		newVersion string
		doc        models.Document
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := doc.Get(tx, documentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
			}
			return fmt.Errorf("error loading document: %w", err)
		}

		var err error
		newVersion, err = bump(doc.CurrentVersion, in.IsMajor)
		if err != nil {
			return err
		}
		newRevision := doc.RevisionNumber + 1

		// Flip the previously current row, if any.
		if err := tx.Model(&models.DocumentVersion{}).
			Where("document_id = ? AND is_current = ?", documentID, true).
			Update("is_current", false).Error; err != nil {
			return fmt.Errorf("error flipping current version: %w", err)
		}

		version := models.DocumentVersion{
			DocumentID:     documentID,
			VersionNumber:  newVersion,
			RevisionNumber: newRevision,
			ChangeSummary:  in.ChangeSummary,
			ReleasedAt:     m.clock(),
			IsCurrent:      true,
			CreatedBy:      in.ActorID,
		}
		if in.FileRef != nil {
			version.FilePath = in.FileRef.Path
			version.FileSize = in.FileRef.Size
			version.FileChecksum = in.FileRef.Checksum
		}
		if err := version.Create(tx); err != nil {
			return fmt.Errorf("error creating version row: %w", err)
		}

		// New content restarts the approval workflow.
		if err := tx.Model(&models.Document{}).
			Where("id = ?", documentID).
			Updates(map[string]interface{}{
				"current_version": newVersion,
				"revision_number": newRevision,
				"status":          models.StatusDraft,
				"submitted_at":    nil,
				"reviewed_at":     nil,
				"approved_at":     nil,
			}).Error; err != nil {
			return fmt.Errorf("error updating document version fields: %w", err)
		}

		// The status reset is a workflow transition like any other: without
		// an event row, replaying the log would stop at the old status.
		if doc.Status != models.StatusDraft {
			event := models.WorkflowEvent{
				DocumentID: documentID,
				Action:     models.ActionNewVersion,
				FromStatus: doc.Status,
				ToStatus:   models.StatusDraft,
				ActorID:    in.ActorID,
				Comments:   in.ChangeSummary,
			}
			if err := event.Create(tx); err != nil {
				return fmt.Errorf("error writing workflow event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	m.log.Info("created document version",
		"document_id", documentID,
		"version", newVersion,
	)

	entry := audit.NewEntry("version.create", in.ActorID)
	entry.DocumentID = documentID
	entry.DocumentUUID = doc.DocumentUUID
	entry.Before = map[string]any{"version": doc.CurrentVersion, "revision": doc.RevisionNumber}
	entry.After = map[string]any{"version": newVersion, "revision": doc.RevisionNumber + 1}
	if err := m.sink.Append(ctx, entry); err != nil {
		m.log.Warn("failed to append audit entry", "error", err)
	}

	return newVersion, nil
}

// GetHistory returns all version rows for a document, newest first.
func (m *Manager) GetHistory(ctx context.Context, documentID uint) ([]models.DocumentVersion, error) {
	versions, err := models.ListVersions(m.db.WithContext(ctx), documentID)
	if err != nil {
		return nil, fmt.Errorf("error listing versions: %w", err)
	}
	return versions, nil
}

// bump computes the next major.minor string. A major bump resets minor to
// zero; a minor bump leaves major untouched.
func bump(current string, isMajor bool) (string, error) {
	major, minor, err := parseVersion(current)
	if err != nil {
		return "", err
	}
	if isMajor {
		return fmt.Sprintf("%d.0", major+1), nil
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}

// parseVersion splits a "major.minor" string.
func parseVersion(s string) (int, int, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed version string %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version string %q", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version string %q", s)
	}
	return major, minor, nil
}
