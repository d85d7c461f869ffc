package user

import (
	"github.com/google/uuid"
)

// User is intentionally thin: authentication state lives in storage and the
// domain only needs identity, tenant scope and role for authorization.
type User struct {
	id       uuid.UUID
	tenantID uuid.UUID
	email    string
	role     Role
	isActive bool
}

func Reconstruct(id, tenantID uuid.UUID, email string, role Role, isActive bool) *User {
	return &User{
		id:       id,
		tenantID: tenantID,
		email:    email,
		role:     role,
		isActive: isActive,
	}
}

func (u *User) ID() uuid.UUID       { return u.id }
func (u *User) TenantID() uuid.UUID { return u.tenantID }
func (u *User) Email() string       { return u.email }
func (u *User) Role() Role          { return u.role }
func (u *User) IsActive() bool      { return u.isActive }
