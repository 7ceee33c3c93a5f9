package models

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the per-clinic activity log.
const (
	ActionAuditSaved        = "audit.saved"
	ActionAuditDeleted      = "audit.deleted"
	ActionInvitationSent    = "invitation.sent"
	ActionInvitationRevoked = "invitation.revoked"
	ActionInvitationRedeem  = "invitation.accepted"
	ActionUserActivated     = "user.activated"
	ActionUserDeactivated   = "user.deactivated"
	ActionGoalsUpdated      = "goals.updated"
)

// ActivityLog records who did what inside a clinic. Writes are best-effort:
// a failed insert is logged by the caller and never fails the operation.
type ActivityLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClinicID  uuid.UUID `json:"clinic_id" db:"clinic_id"`
	ActorID   uuid.UUID `json:"actor_id" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  string    `json:"entity_id" db:"entity_id"`
	Detail    *string   `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
