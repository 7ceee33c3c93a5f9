package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// UserService covers clinic membership management and the caller's own
// profile.
type UserService interface {
	Me(ctx context.Context, p *common.Principal) (*models.User, error)
	List(ctx context.Context, p *common.Principal, limit, offset int) ([]*models.User, error)
	SetActive(ctx context.Context, p *common.Principal, userID uuid.UUID, active bool) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	activity repositories.ActivityLogRepository
	log      *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, activity repositories.ActivityLogRepository, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, activity: activity, log: log}
}

func (s *userService) Me(ctx context.Context, p *common.Principal) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, p.ClinicID, p.UserID)
	if err != nil {
		return nil, common.FromDB(err, "user")
	}
	return user, nil
}

// List returns the members of the caller's clinic. Admin only.
func (s *userService) List(ctx context.Context, p *common.Principal, limit, offset int) ([]*models.User, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, p.ClinicID, limit, offset)
	if err != nil {
		return nil, common.StorageError("user list", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// SetActive flips a member's active flag. Admins cannot deactivate
// themselves; targeting a user outside the clinic reports not found.
func (s *userService) SetActive(ctx context.Context, p *common.Principal, userID uuid.UUID, active bool) (*models.User, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}
	if !active && userID == p.UserID {
		return nil, common.ValidationError("you cannot deactivate your own account")
	}

	rows, err := s.userRepo.SetActive(ctx, p.ClinicID, userID, active)
	if err != nil {
		return nil, common.StorageError("user update", err)
	}
	if rows == 0 {
		return nil, common.NotFoundError("user")
	}

	user, err := s.userRepo.GetByID(ctx, p.ClinicID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("user")
		}
		return nil, common.StorageError("user lookup", err)
	}

	action := models.ActionUserActivated
	if !active {
		action = models.ActionUserDeactivated
	}
	entry := &models.ActivityLog{
		ID:       uuid.New(),
		ClinicID: p.ClinicID,
		ActorID:  p.UserID,
		Action:   action,
		Entity:   "user",
		EntityID: userID.String(),
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}

	return user, nil
}
