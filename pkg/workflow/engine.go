// Package workflow drives documents through the Doer-Checker-Approver
// approval workflow. The state machine is a fixed transition table; every
// transition writes exactly one workflow event inside the same transaction
// that moves the status, so replaying a document's events always reproduces
// its current status.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/audit"
	"github.com/hashicorp-forge/curator/pkg/authz"
	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

// ReviewDecision is the checker's verdict on a submitted document.
type ReviewDecision string

const (
	DecisionApprove         ReviewDecision = "approve"
	DecisionReject          ReviewDecision = "reject"
	DecisionRequestRevision ReviewDecision = "request-revision"
)

// Engine applies workflow transitions.
type Engine struct {
	db         *gorm.DB
	authorizer authz.Authorizer
	sink       audit.Sink
	log        hclog.Logger
	clock      func() time.Time
}

// NewEngine creates a workflow engine.
func NewEngine(db *gorm.DB, authorizer authz.Authorizer, sink audit.Sink, log hclog.Logger) *Engine {
	if authorizer == nil {
		authorizer = authz.AllowAll{}
	}
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{
		db:         db,
		authorizer: authorizer,
		sink:       sink,
		log:        log.Named("workflow"),
		clock:      time.Now,
	}
}

// Submit moves a Draft document to Submitted.
func (e *Engine) Submit(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionSubmit, models.StatusSubmitted, comments)
}

// Review records the checker's verdict on a Submitted document.
func (e *Engine) Review(ctx context.Context, documentID uint, actorID string, decision ReviewDecision, comments string) error {
	var to models.DocumentStatus
	switch decision {
	case DecisionApprove:
		to = models.StatusUnderReview
	case DecisionReject:
		to = models.StatusRejected
	case DecisionRequestRevision:
		to = models.StatusRevisionRequired
	default:
		return dcerr.New(dcerr.CodeInvalidTransition, "unknown review decision %q", decision)
	}
	return e.apply(ctx, documentID, actorID, models.ActionReview, to, comments)
}

// Approve moves an UnderReview document to Approved.
func (e *Engine) Approve(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionApprove, models.StatusApproved, comments)
}

// Reject moves an UnderReview document to Rejected.
func (e *Engine) Reject(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionReject, models.StatusRejected, comments)
}

// RequestRevision sends an UnderReview document back for revision.
func (e *Engine) RequestRevision(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionRequestRevision, models.StatusRevisionRequired, comments)
}

// Revise returns a RevisionRequired document to Draft, incrementing the
// revision counter and clearing prior review and approval timestamps.
func (e *Engine) Revise(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionRevise, models.StatusDraft, comments)
}

// Cancel moves any non-terminal document to Cancelled.
func (e *Engine) Cancel(ctx context.Context, documentID uint, actorID, comments string) error {
	return e.apply(ctx, documentID, actorID, models.ActionCancel, models.StatusCancelled, comments)
}

// GetWorkflowHistory returns the full ordered event list for a document.
func (e *Engine) GetWorkflowHistory(ctx context.Context, documentID uint) ([]models.WorkflowEvent, error) {
	events, err := models.ListWorkflowEvents(e.db.WithContext(ctx), documentID)
	if err != nil {
		return nil, fmt.Errorf("error listing workflow events: %w", err)
	}
	return events, nil
}

// apply performs one transition: permission check, role check, a
// compare-and-swap on the document status, and the event write, with the
// status change and the event in one transaction. A failed apply leaves no
// partial state.
func (e *Engine) apply(ctx context.Context, documentID uint, actorID string, action models.WorkflowAction, to models.DocumentStatus, comments string) error {
	if actorID == "" {
		return dcerr.New(dcerr.CodeUnauthorized, "an acting user is required")
	}

	var doc models.Document
	if err := doc.Get(e.db.WithContext(ctx), documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return fmt.Errorf("error loading document: %w", err)
	}

	from := doc.Status
	tr, ok := findTransition(from, action, to)
	if !ok {
		return dcerr.New(dcerr.CodeInvalidTransition,
			"action %s is not legal for document %d in status %s", action, documentID, from)
	}

	allowed, err := e.authorizer.HasPermission(ctx, documentID, actorID, strings.ToLower(string(action)))
	if err != nil {
		return fmt.Errorf("error checking permission: %w", err)
	}
	if !allowed {
		return dcerr.New(dcerr.CodeUnauthorized,
			"user %s is not permitted to %s document %d", actorID, action, documentID)
	}

	matrix, err := models.LookupApprovalMatrix(e.db.WithContext(ctx), &doc)
	if err != nil {
		return fmt.Errorf("error loading approval matrix: %w", err)
	}

	if err := e.checkRole(&doc, matrix, tr.Role, actorID); err != nil {
		return err
	}

	updates := e.transitionUpdates(&doc, matrix, tr, actorID)

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on status: a concurrent transition that got in
		// first makes this one illegal, not silently re-applied.
		res := tx.Model(&models.Document{}).
			Where("id = ? AND status = ?", documentID, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("error updating document status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return dcerr.New(dcerr.CodeInvalidTransition,
				"document %d is no longer in status %s", documentID, from)
		}

		event := models.WorkflowEvent{
			DocumentID: documentID,
			Action:     action,
			FromStatus: from,
			ToStatus:   tr.To,
			ActorID:    actorID,
			Comments:   comments,
		}
		if err := event.Create(tx); err != nil {
			return fmt.Errorf("error writing workflow event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Info("workflow transition applied",
		"document_id", documentID,
		"action", action,
		"from", from,
		"to", tr.To,
		"actor", actorID,
	)

	entry := audit.NewEntry("workflow."+strings.ToLower(string(action)), actorID)
	entry.DocumentID = documentID
	entry.DocumentUUID = doc.DocumentUUID
	entry.Before = map[string]any{"status": string(from)}
	entry.After = map[string]any{"status": string(tr.To)}
	if err := e.sink.Append(ctx, entry); err != nil {
		e.log.Warn("failed to append audit entry", "error", err)
	}

	return nil
}

// checkRole enforces the assigned-actor rule for a transition. Assignments
// resolve from the document first, then the approval matrix. An assignment
// that resolves to empty cannot be role-checked and passes; the caller is
// expected to assign before the next gated transition.
func (e *Engine) checkRole(doc *models.Document, matrix *models.ApprovalMatrixEntry, role Role, actorID string) error {
	if role == RoleAny {
		return nil
	}

	assigned := assignedActor(doc, matrix, role)
	if assigned != "" && assigned != actorID {
		return dcerr.New(dcerr.CodeUnauthorized,
			"user %s is not the assigned %s for document %d", actorID, role, doc.ID)
	}
	return nil
}

// assignedActor resolves who holds a role for a document.
func assignedActor(doc *models.Document, matrix *models.ApprovalMatrixEntry, role Role) string {
	var fromDoc, fromMatrix string
	switch role {
	case RoleDoer:
		fromDoc = doc.DoerID
		if matrix != nil {
			fromMatrix = matrix.DoerID
		}
	case RoleChecker:
		fromDoc = doc.CheckerID
		if matrix != nil {
			fromMatrix = matrix.CheckerID
		}
	case RoleApprover:
		fromDoc = doc.ApproverID
		if matrix != nil {
			fromMatrix = matrix.ApproverID
		}
	}
	if fromDoc != "" {
		return fromDoc
	}
	return fromMatrix
}

// transitionUpdates builds the column updates applied alongside the status
// change.
func (e *Engine) transitionUpdates(doc *models.Document, matrix *models.ApprovalMatrixEntry, tr transition, actorID string) map[string]interface{} {
	now := e.clock()
	updates := map[string]interface{}{
		"status": tr.To,
	}

	switch tr.Action {
	case models.ActionSubmit:
		updates["submitted_at"] = now
		// First submission pins the doer.
		if doc.DoerID == "" {
			updates["doer_id"] = actorID
		}
	case models.ActionReview:
		if doc.CheckerID == "" {
			updates["checker_id"] = actorID
		}
		if tr.To == models.StatusUnderReview {
			updates["reviewed_at"] = now
			// Auto-assign the next approver from the matrix on entry to
			// UnderReview; left null when nothing is configured.
			if doc.ApproverID == "" && matrix != nil && matrix.ApproverID != "" {
				updates["approver_id"] = matrix.ApproverID
			}
		}
	case models.ActionApprove:
		updates["approved_at"] = now
	case models.ActionRevise:
		updates["revision_number"] = doc.RevisionNumber + 1
		updates["reviewed_at"] = nil
		updates["approved_at"] = nil
	}

	return updates
}
