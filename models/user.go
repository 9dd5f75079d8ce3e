package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within the registry
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAuditor UserRole = "auditor"
	RoleMember  UserRole = "member"
)

// ValidRole reports whether the given role is one the registry knows about.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleAuditor, RoleMember:
		return true
	}
	return false
}

// User represents an authenticated account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(name, email, passwordHash string, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Caller is the authenticated identity issuing a request. Services receive
// the caller as an explicit parameter; it is never held in package state.
type Caller struct {
	ID   uuid.UUID
	Role UserRole
}

// IsAdmin returns true if the caller has admin role
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
