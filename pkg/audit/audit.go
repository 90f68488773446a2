// Package audit defines the append-only audit sink that every mutating
// engine operation writes one structured entry to. This is distinct from the
// in-engine workflow event log: the engine never reads audit entries back.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one structured audit record.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Action is the mutating operation, e.g. "document.create",
	// "workflow.approve", "retention.destroy".
	Action  string `json:"action"`
	ActorID string `json:"actorId"`

	DocumentID   uint      `json:"documentId,omitempty"`
	DocumentUUID uuid.UUID `json:"documentUuid,omitempty"`

	// Before and After capture the values the operation changed.
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// Sink accepts audit entries. Implementations must be append-only; there is
// no read path.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// NewEntry builds an entry with a fresh ID and timestamp.
func NewEntry(action, actorID string) Entry {
	return Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		ActorID:   actorID,
	}
}

// Nop discards all entries.
type Nop struct{}

func (Nop) Append(ctx context.Context, entry Entry) error {
	return nil
}
