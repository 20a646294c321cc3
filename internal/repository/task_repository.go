package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, tenantID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	q := r.db.WithContext(ctx).Where("id = ?", taskID)
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if err := q.First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// ListVisible returns tasks scoped to a tenant. Non-elevated callers only
// see tasks they created or are assigned to.
func (r *TaskRepository) ListVisible(ctx context.Context, tenantID, userID uuid.UUID, elevated bool) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if !elevated {
		q = q.Where("assigned_to = ? OR created_by = ?", userID, userID)
	}
	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListDueBetween returns non-completed tasks whose due date falls inside
// [from, to). Spans all tenants; reminder scans are cross-tenant.
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ? AND status != ?", from, to, model.StatusCompleted).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOverdue returns non-completed tasks due strictly before the given
// instant.
func (r *TaskRepository) ListOverdue(ctx context.Context, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("due_date < ? AND status != ?", before, model.StatusCompleted).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SoftDelete marks a task deleted without touching its status.
func (r *TaskRepository) SoftDelete(ctx context.Context, tenantID, taskID uuid.UUID) error {
	q := r.db.WithContext(ctx).Where("id = ?", taskID)
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	res := q.Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTrash returns soft-deleted tasks for a tenant.
func (r *TaskRepository) ListTrash(ctx context.Context, tenantID uuid.UUID) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Unscoped().Where("deleted_at IS NOT NULL")
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	var tasks []model.Task
	if err := q.Order("deleted_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Restore clears the soft-delete marker.
func (r *TaskRepository) Restore(ctx context.Context, tenantID, taskID uuid.UUID) error {
	q := r.db.WithContext(ctx).Unscoped().Model(&model.Task{}).Where("id = ?", taskID)
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	res := q.Update("deleted_at", nil)
	if res.Error != nil {
		return fmt.Errorf("restore task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Purge removes a soft-deleted task permanently.
func (r *TaskRepository) Purge(ctx context.Context, tenantID, taskID uuid.UUID) error {
	q := r.db.WithContext(ctx).Unscoped().Where("id = ?", taskID)
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	res := q.Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("purge task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
