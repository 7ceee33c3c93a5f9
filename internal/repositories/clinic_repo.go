package repositories

import (
	"context"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClinicRepository interface {
	WithTx(tx pgx.Tx) ClinicRepository
	Create(ctx context.Context, clinic *models.Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	Update(ctx context.Context, clinic *models.Clinic) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type clinicRepo struct {
	db Database
}

func NewClinicRepo(db Database) ClinicRepository {
	return &clinicRepo{db: db}
}

func (r *clinicRepo) WithTx(tx pgx.Tx) ClinicRepository {
	return &clinicRepo{db: tx}
}

func (r *clinicRepo) Create(ctx context.Context, clinic *models.Clinic) error {
	query := `
		INSERT INTO clinics (id, name, location, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, clinic.ID, clinic.Name, clinic.Location)
	return err
}

func (r *clinicRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	clinic := &models.Clinic{}
	query := `
		SELECT id, name, location, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&clinic.ID, &clinic.Name, &clinic.Location, &clinic.CreatedAt, &clinic.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return clinic, nil
}

func (r *clinicRepo) Update(ctx context.Context, clinic *models.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, location = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, clinic.Name, clinic.Location, clinic.ID)
	return err
}

// Delete removes the clinic row; dependent rows go with it through the
// ON DELETE CASCADE foreign keys.
func (r *clinicRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
