package services

import (
	"context"

	"clinicpulse/internal/common"
	"clinicpulse/internal/models"
	"clinicpulse/internal/repositories"
)

// ActivityService exposes the clinic's activity log to admins.
type ActivityService interface {
	List(ctx context.Context, p *common.Principal, limit, offset int) ([]*models.ActivityLog, error)
}

type activityService struct {
	activityRepo repositories.ActivityLogRepository
}

func NewActivityService(activityRepo repositories.ActivityLogRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) List(ctx context.Context, p *common.Principal, limit, offset int) ([]*models.ActivityLog, error) {
	if p.Role != models.RoleAdmin {
		return nil, common.AuthorizationError("admin role required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.activityRepo.List(ctx, p.ClinicID, limit, offset)
	if err != nil {
		return nil, common.StorageError("activity list", err)
	}
	if entries == nil {
		entries = []*models.ActivityLog{}
	}
	return entries, nil
}
