package repositories

import (
	"context"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PasswordResetRepository interface {
	WithTx(tx pgx.Tx) PasswordResetRepository
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

type passwordResetRepo struct {
	db Database
}

func NewPasswordResetRepo(db Database) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) WithTx(tx pgx.Tx) PasswordResetRepository {
	return &passwordResetRepo{db: tx}
}

func (r *passwordResetRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt)
	return err
}

func (r *passwordResetRepo) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	reset := &models.PasswordResetToken{}
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(
		&reset.ID, &reset.UserID, &reset.Token, &reset.ExpiresAt, &reset.Used, &reset.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reset, nil
}

// MarkUsed flags the token consumed; rows are kept so reuse attempts keep
// failing rather than looking like unknown tokens.
func (r *passwordResetRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
