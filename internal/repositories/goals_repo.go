package repositories

import (
	"context"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GoalsRepository interface {
	WithTx(tx pgx.Tx) GoalsRepository
	GetByClinic(ctx context.Context, clinicID uuid.UUID) (*models.GlobalGoals, error)
	Insert(ctx context.Context, goals *models.GlobalGoals) error
	Update(ctx context.Context, goals *models.GlobalGoals) error
}

type goalsRepo struct {
	db Database
}

func NewGoalsRepo(db Database) GoalsRepository {
	return &goalsRepo{db: db}
}

func (r *goalsRepo) WithTx(tx pgx.Tx) GoalsRepository {
	return &goalsRepo{db: tx}
}

func (r *goalsRepo) GetByClinic(ctx context.Context, clinicID uuid.UUID) (*models.GlobalGoals, error) {
	goals := &models.GlobalGoals{}
	query := `
		SELECT id, clinic_id, revenue_goal, profit_margin_goal, capacity_goal, created_at, updated_at
		FROM global_goals
		WHERE clinic_id = $1
	`
	err := r.db.QueryRow(ctx, query, clinicID).Scan(
		&goals.ID, &goals.ClinicID, &goals.RevenueGoal, &goals.ProfitMarginGoal,
		&goals.CapacityGoal, &goals.CreatedAt, &goals.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// Insert is race-safe for the lazy-default path: a concurrent insert for the
// same clinic is a no-op, not an error.
func (r *goalsRepo) Insert(ctx context.Context, goals *models.GlobalGoals) error {
	query := `
		INSERT INTO global_goals (id, clinic_id, revenue_goal, profit_margin_goal, capacity_goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (clinic_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, goals.ID, goals.ClinicID, goals.RevenueGoal, goals.ProfitMarginGoal, goals.CapacityGoal)
	return err
}

func (r *goalsRepo) Update(ctx context.Context, goals *models.GlobalGoals) error {
	query := `
		UPDATE global_goals
		SET revenue_goal = $1, profit_margin_goal = $2, capacity_goal = $3, updated_at = NOW()
		WHERE clinic_id = $4
	`
	_, err := r.db.Exec(ctx, query, goals.RevenueGoal, goals.ProfitMarginGoal, goals.CapacityGoal, goals.ClinicID)
	return err
}
