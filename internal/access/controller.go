// Package access gates request submission behind the administrator
// approval workflow. Every user starts out pending; an explicit admin
// decision moves them to approved or denied.
package access

import (
	"TuneRelay/model"
)

// Backend is the persistence contract behind the controller. It exists
// so the approval store can be swapped without touching the state
// machine rules.
type Backend interface {
	RegisterOrUpdate(telegramID int64, fullName, userName string) (uint64, error)
	Lookup(telegramID int64) (*model.User, error)
	SetApproval(telegramID int64, state string) (bool, error)
}

type Controller struct {
	backend Backend
}

// NewController builds a Controller over the given backend.
func NewController(backend Backend) *Controller {
	return &Controller{backend: backend}
}

// Register creates the user on first contact with a pending state, or
// refreshes display fields on an existing record. It never changes an
// existing approval state.
func (c *Controller) Register(telegramID int64, fullName, userName string) (uint64, error) {
	return c.backend.RegisterOrUpdate(telegramID, fullName, userName)
}

// IsApproved reports whether the user may submit work. The state is
// read straight from the backend so an admin decision is visible on
// the very next submission.
func (c *Controller) IsApproved(telegramID int64) (bool, error) {
	user, err := c.backend.Lookup(telegramID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.Approval == model.ApprovalApproved, nil
}

// Approve grants access. Approving an already-approved user is a
// no-op success; an unknown identity returns false.
func (c *Controller) Approve(telegramID int64) (bool, error) {
	return c.backend.SetApproval(telegramID, model.ApprovalApproved)
}

// Deny rejects access. Denying an already-denied user is a no-op
// success; an unknown identity returns false.
func (c *Controller) Deny(telegramID int64) (bool, error) {
	return c.backend.SetApproval(telegramID, model.ApprovalDenied)
}

// Lookup returns the stored user record, or nil when unknown.
func (c *Controller) Lookup(telegramID int64) (*model.User, error) {
	return c.backend.Lookup(telegramID)
}
