package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// Invitation is a clinic-scoped offer to join as a member or admin. Expiry is
// evaluated lazily: a pending row past its expires_at is reported as expired
// but the stored status only ever moves pending -> accepted.
type Invitation struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ClinicID   uuid.UUID  `json:"clinic_id" db:"clinic_id"`
	Email      string     `json:"email" db:"email"`
	InvitedBy  uuid.UUID  `json:"invited_by" db:"invited_by"`
	Role       string     `json:"role" db:"role"`
	Token      string     `json:"-" db:"token"` // Never return in JSON
	Status     string     `json:"status" db:"status"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at" db:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// EffectiveStatus folds lazy expiry into the stored status.
func (i *Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// InvitationWithInviter is the admin-facing listing row.
type InvitationWithInviter struct {
	Invitation
	InviterName string `json:"inviter_name" db:"inviter_name"`
}
