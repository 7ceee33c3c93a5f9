package repositories

import (
	"context"

	"clinicpulse/internal/models"

	"github.com/google/uuid"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error)
}

type activityLogRepo struct {
	db Database
}

func NewActivityLogRepo(db Database) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, clinic_id, actor_id, action, entity, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.ClinicID, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, entry.Detail)
	return err
}

func (r *activityLogRepo) List(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, clinic_id, actor_id, action, entity, entity_id, detail, created_at
		FROM activity_logs
		WHERE clinic_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, clinicID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		entry := &models.ActivityLog{}
		if err := rows.Scan(&entry.ID, &entry.ClinicID, &entry.ActorID, &entry.Action,
			&entry.Entity, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
