package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// WorkflowAction is the closed set of actions that drive workflow
// transitions.
type WorkflowAction string

const (
	ActionSubmit          WorkflowAction = "Submit"
	ActionReview          WorkflowAction = "Review"
	ActionRequestRevision WorkflowAction = "RequestRevision"
	ActionApprove         WorkflowAction = "Approve"
	ActionReject          WorkflowAction = "Reject"
	ActionRevise          WorkflowAction = "Revise"
	ActionCancel          WorkflowAction = "Cancel"

	// ActionNewVersion records the status reset to Draft that accompanies a
	// new document version, keeping the event log authoritative for replay.
	ActionNewVersion WorkflowAction = "NewVersion"
)

// WorkflowEvent is the append-only audit of every workflow transition.
// Replaying a document's events in order from Draft must reproduce its
// current status.
type WorkflowEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	DocumentID uint `gorm:"not null;index:idx_workflow_events_doc" json:"documentId"`

	Action     WorkflowAction `gorm:"type:varchar(20);not null" json:"action"`
	FromStatus DocumentStatus `gorm:"type:varchar(20);not null" json:"fromStatus"`
	ToStatus   DocumentStatus `gorm:"type:varchar(20);not null" json:"toStatus"`

	ActorID  string `gorm:"type:varchar(100);not null" json:"actorId"`
	Comments string `gorm:"type:text" json:"comments,omitempty"`
}

// TableName specifies the table name.
func (WorkflowEvent) TableName() string {
	return "workflow_events"
}

// Create inserts the event row after validating required fields.
func (e *WorkflowEvent) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(e,
		validation.Field(&e.DocumentID, validation.Required),
		validation.Field(&e.Action, validation.Required),
		validation.Field(&e.FromStatus, validation.Required),
		validation.Field(&e.ToStatus, validation.Required),
		validation.Field(&e.ActorID, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Create(&e).Error
}

// ListWorkflowEvents retrieves all events for a document in transition order.
func ListWorkflowEvents(db *gorm.DB, documentID uint) ([]WorkflowEvent, error) {
	var events []WorkflowEvent
	err := db.Where("document_id = ?", documentID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

// CountWorkflowEvents returns the number of events recorded for a document.
func CountWorkflowEvents(db *gorm.DB, documentID uint) (int64, error) {
	var count int64
	err := db.Model(&WorkflowEvent{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}
