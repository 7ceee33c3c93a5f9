package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is one of the supported membership roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// User belongs to exactly one clinic; the clinic reference never changes
// after creation. Email is unique across all clinics.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ClinicID     uuid.UUID  `json:"clinic_id" db:"clinic_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
