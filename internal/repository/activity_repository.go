package repository

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// ActivityRepository appends audit records.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, actorID uuid.UUID, action, details string, taskID *uuid.UUID) error {
	entry := model.ActivityLog{
		ActorID: actorID,
		Action:  action,
		Details: details,
		TaskID:  taskID,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// ListByTask returns the audit trail of one task, newest first.
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
