package user

import (
	"time"

	"github.com/google/uuid"
)

// Role governs shipment visibility and access to administrative operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User represents a user entity in the domain
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHashed string
	Role           Role
	CreatedAt      time.Time
}

// Changes is a partial update. Nil fields are left unchanged.
type Changes struct {
	Username       *string
	PasswordHashed *string
	Role           *Role
}

func (c Changes) IsEmpty() bool {
	return c.Username == nil && c.PasswordHashed == nil && c.Role == nil
}
