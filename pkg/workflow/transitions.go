package workflow

import (
	"github.com/hashicorp-forge/curator/pkg/models"
)

// Role identifies which assigned actor a transition requires.
type Role int

const (
	// RoleAny allows any actor that passes the access-control check.
	RoleAny Role = iota
	RoleDoer
	RoleChecker
	RoleApprover
)

func (r Role) String() string {
	switch r {
	case RoleDoer:
		return "doer"
	case RoleChecker:
		return "checker"
	case RoleApprover:
		return "approver"
	default:
		return "any"
	}
}

// transition is one legal edge in the workflow state machine.
type transition struct {
	From   models.DocumentStatus
	Action models.WorkflowAction
	To     models.DocumentStatus
	Role   Role
}

// transitions is the complete workflow state machine. Review fans out to
// three outcomes depending on the checker's decision, so (From, Action) alone
// is not a unique key; (From, Action, To) is.
//
// Cancel is legal from every non-terminal state, and NewVersion (the status
// reset written by the version manager) is legal from every non-Draft state;
// both are handled separately in findTransition.
var transitions = []transition{
	{From: models.StatusDraft, Action: models.ActionSubmit, To: models.StatusSubmitted, Role: RoleDoer},

	{From: models.StatusSubmitted, Action: models.ActionReview, To: models.StatusUnderReview, Role: RoleChecker},
	{From: models.StatusSubmitted, Action: models.ActionReview, To: models.StatusRejected, Role: RoleChecker},
	{From: models.StatusSubmitted, Action: models.ActionReview, To: models.StatusRevisionRequired, Role: RoleChecker},

	{From: models.StatusUnderReview, Action: models.ActionApprove, To: models.StatusApproved, Role: RoleApprover},
	{From: models.StatusUnderReview, Action: models.ActionReject, To: models.StatusRejected, Role: RoleApprover},
	{From: models.StatusUnderReview, Action: models.ActionRequestRevision, To: models.StatusRevisionRequired, Role: RoleApprover},

	{From: models.StatusRevisionRequired, Action: models.ActionRevise, To: models.StatusDraft, Role: RoleDoer},
}

// findTransition resolves the table entry for a (from, action, to) triple.
func findTransition(from models.DocumentStatus, action models.WorkflowAction, to models.DocumentStatus) (transition, bool) {
	if action == models.ActionCancel {
		if from.IsTerminal() || to != models.StatusCancelled {
			return transition{}, false
		}
		return transition{From: from, Action: action, To: models.StatusCancelled, Role: RoleAny}, true
	}
	if action == models.ActionNewVersion {
		if from == models.StatusDraft || to != models.StatusDraft {
			return transition{}, false
		}
		return transition{From: from, Action: action, To: models.StatusDraft, Role: RoleAny}, true
	}
	for _, t := range transitions {
		if t.From == from && t.Action == action && t.To == to {
			return t, true
		}
	}
	return transition{}, false
}

// legal reports whether a (from, action, to) triple is a valid edge. Used by
// event replay.
func legal(from models.DocumentStatus, action models.WorkflowAction, to models.DocumentStatus) bool {
	_, ok := findTransition(from, action, to)
	return ok
}
