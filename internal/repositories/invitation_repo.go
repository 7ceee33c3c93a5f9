package repositories

import (
	"context"
	"time"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvitationRepository interface {
	WithTx(tx pgx.Tx) InvitationRepository
	Create(ctx context.Context, inv *models.Invitation) error
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	HasPending(ctx context.Context, clinicID uuid.UUID, email string, now time.Time) (bool, error)
	List(ctx context.Context, clinicID uuid.UUID) ([]*models.InvitationWithInviter, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) (int64, error)
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type invitationRepo struct {
	db Database
}

func NewInvitationRepo(db Database) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) WithTx(tx pgx.Tx) InvitationRepository {
	return &invitationRepo{db: tx}
}

func (r *invitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, clinic_id, email, invited_by, role, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.ClinicID, inv.Email, inv.InvitedBy, inv.Role, inv.Token, inv.Status, inv.ExpiresAt)
	return err
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv := &models.Invitation{}
	query := `
		SELECT id, clinic_id, email, invited_by, role, token, status, expires_at, accepted_at, created_at
		FROM invitations
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.ClinicID, &inv.Email, &inv.InvitedBy, &inv.Role,
		&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// HasPending reports whether a live (unexpired, still pending) invitation for
// this email already exists in the clinic.
func (r *invitationRepo) HasPending(ctx context.Context, clinicID uuid.UUID, email string, now time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM invitations
		WHERE clinic_id = $1 AND email = $2 AND status = $3 AND expires_at > $4
	`
	err := r.db.QueryRow(ctx, query, clinicID, email, models.InvitationPending, now).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*models.InvitationWithInviter, error) {
	query := `
		SELECT i.id, i.clinic_id, i.email, i.invited_by, i.role, i.token, i.status,
			i.expires_at, i.accepted_at, i.created_at, u.name AS inviter_name
		FROM invitations i
		JOIN users u ON u.id = i.invited_by
		WHERE i.clinic_id = $1
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*models.InvitationWithInviter
	for rows.Next() {
		inv := &models.InvitationWithInviter{}
		if err := rows.Scan(
			&inv.ID, &inv.ClinicID, &inv.Email, &inv.InvitedBy, &inv.Role, &inv.Token,
			&inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt, &inv.InviterName); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepo) Delete(ctx context.Context, clinicID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM invitations WHERE clinic_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, clinicID, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *invitationRepo) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE invitations
		SET status = $1, accepted_at = $2
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, models.InvitationAccepted, at, id)
	return err
}
