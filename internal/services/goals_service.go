package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"clinicpulse/internal/caching"
	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// UpdateGoalsRequest carries the three per-clinic targets.
type UpdateGoalsRequest struct {
	RevenueGoal      decimal.Decimal `json:"revenue_goal"`
	ProfitMarginGoal float64         `json:"profit_margin_goal"`
	CapacityGoal     float64         `json:"capacity_goal"`
}

// GoalsService reads and updates the clinic's scoring targets. A clinic that
// has never configured goals reads the system defaults, which are persisted
// on first access.
type GoalsService interface {
	Get(ctx context.Context, p *common.Principal) (*models.GlobalGoals, error)
	Update(ctx context.Context, p *common.Principal, req UpdateGoalsRequest) (*models.GlobalGoals, error)
}

type goalsService struct {
	goalsRepo repositories.GoalsRepository
	activity  repositories.ActivityLogRepository
	cache     caching.CacheService
	log       *zap.Logger
}

func NewGoalsService(goalsRepo repositories.GoalsRepository, activity repositories.ActivityLogRepository, cache caching.CacheService, log *zap.Logger) GoalsService {
	return &goalsService{goalsRepo: goalsRepo, activity: activity, cache: cache, log: log}
}

// Get returns the clinic's goals, materializing the defaults on first read.
// The insert is a no-op if a concurrent request won the race.
func (s *goalsService) Get(ctx context.Context, p *common.Principal) (*models.GlobalGoals, error) {
	goals, err := s.goalsRepo.GetByClinic(ctx, p.ClinicID)
	if err == nil {
		return goals, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.StorageError("goals lookup", err)
	}

	if err := s.goalsRepo.Insert(ctx, models.DefaultGoals(p.ClinicID)); err != nil {
		return nil, common.StorageError("goals create", err)
	}
	goals, err = s.goalsRepo.GetByClinic(ctx, p.ClinicID)
	if err != nil {
		return nil, common.FromDB(err, "goals")
	}
	return goals, nil
}

// Update replaces the clinic's targets and invalidates every cached scorecard
// for the clinic, since all months now score against the new goals.
func (s *goalsService) Update(ctx context.Context, p *common.Principal, req UpdateGoalsRequest) (*models.GlobalGoals, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}
	if req.RevenueGoal.IsNegative() {
		return nil, common.ValidationError("revenue_goal cannot be negative")
	}
	if req.ProfitMarginGoal < 0 || req.ProfitMarginGoal > 100 {
		return nil, common.ValidationError("profit_margin_goal must be between 0 and 100")
	}
	if req.CapacityGoal < 0 || req.CapacityGoal > 100 {
		return nil, common.ValidationError("capacity_goal must be between 0 and 100")
	}

	// Materializes defaults first so the update always has a row to hit.
	goals, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	goals.RevenueGoal = req.RevenueGoal
	goals.ProfitMarginGoal = req.ProfitMarginGoal
	goals.CapacityGoal = req.CapacityGoal
	if err := s.goalsRepo.Update(ctx, goals); err != nil {
		return nil, common.StorageError("goals update", err)
	}

	if err := s.cache.InvalidateClinic(ctx, p.ClinicID); err != nil {
		s.log.Warn("failed to invalidate scorecard cache", zap.String("clinic_id", p.ClinicID.String()), zap.Error(err))
	}

	entry := &models.ActivityLog{
		ID:       uuid.New(),
		ClinicID: p.ClinicID,
		ActorID:  p.UserID,
		Action:   models.ActionGoalsUpdated,
		Entity:   "goals",
		EntityID: goals.ID.String(),
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", models.ActionGoalsUpdated), zap.Error(err))
	}

	return goals, nil
}
