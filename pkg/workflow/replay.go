package workflow

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/curator/pkg/models"
)

// ReplayStatus replays an ordered event list from Draft and returns the
// status it reconstructs. Every event must start from the status the previous
// one produced and must be a legal edge of the transition table; divergences
// are collected into a multierror rather than stopping at the first, so a
// corrupted history is reported in full.
func ReplayStatus(events []models.WorkflowEvent) (models.DocumentStatus, error) {
	var result *multierror.Error

	current := models.StatusDraft
	for i, ev := range events {
		if ev.FromStatus != current {
			result = multierror.Append(result, fmt.Errorf(
				"event %d (%s): expected from-status %s, recorded %s",
				i, ev.Action, current, ev.FromStatus))
		}
		if !legal(ev.FromStatus, ev.Action, ev.ToStatus) {
			result = multierror.Append(result, fmt.Errorf(
				"event %d (%s): illegal transition %s -> %s",
				i, ev.Action, ev.FromStatus, ev.ToStatus))
		}
		current = ev.ToStatus
	}

	return current, result.ErrorOrNil()
}

// VerifyReplay replays a document's stored events and compares the result
// against its stored status. Returns the reconstructed status and any
// divergence found.
func (e *Engine) VerifyReplay(ctx context.Context, documentID uint) (models.DocumentStatus, error) {
	events, err := e.GetWorkflowHistory(ctx, documentID)
	if err != nil {
		return "", err
	}

	replayed, err := ReplayStatus(events)
	if err != nil {
		return replayed, err
	}

	var doc models.Document
	if err := doc.Get(e.db.WithContext(ctx), documentID); err != nil {
		return replayed, fmt.Errorf("error loading document: %w", err)
	}
	if doc.Status != replayed {
		return replayed, fmt.Errorf(
			"stored status %s does not match replayed status %s", doc.Status, replayed)
	}

	return replayed, nil
}
