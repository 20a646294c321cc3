// Package auth defines the caller identity passed into every core call
// and the HTTP middleware that derives it from a bearer token. The core
// trusts the context but never reads ambient session state.
package auth

import (
	"github.com/gofrs/uuid"

	"taskflow/internal/model"
)

// Context is the immutable caller identity supplied per call.
type Context struct {
	UserID   uuid.UUID
	Role     model.Role
	TenantID uuid.UUID
}

// Manager reports whether the caller holds an elevated role.
func (c Context) Manager() bool {
	return c.Role.Elevated()
}
