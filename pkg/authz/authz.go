// Package authz defines the access-control collaborator consumed by the
// workflow engine. Authentication and session handling live outside the
// engine; this interface only answers permission questions.
package authz

import "context"

// Authorizer answers whether a user may perform an action on a document. The
// workflow engine consults it before every role-gated transition, in addition
// to its own Doer/Checker/Approver role checks.
type Authorizer interface {
	HasPermission(ctx context.Context, documentID uint, userID string, action string) (bool, error)
}

// AllowAll grants every permission. Useful for embedded deployments and
// tests.
type AllowAll struct{}

func (AllowAll) HasPermission(ctx context.Context, documentID uint, userID string, action string) (bool, error) {
	return true, nil
}

// DenyAll rejects every permission. Useful for tests.
type DenyAll struct{}

func (DenyAll) HasPermission(ctx context.Context, documentID uint, userID string, action string) (bool, error) {
	return false, nil
}

// Static grants permissions from a fixed user -> actions table. Users absent
// from the table are denied everything.
type Static struct {
	// Grants maps user ID to the set of allowed actions. A "*" action grants
	// everything.
	Grants map[string][]string
}

func (s Static) HasPermission(ctx context.Context, documentID uint, userID string, action string) (bool, error) {
	for _, a := range s.Grants[userID] {
		if a == "*" || a == action {
			return true, nil
		}
	}
	return false, nil
}
