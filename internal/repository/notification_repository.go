package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// ErrDuplicateNotification reports that an equivalent reminder/overdue
// notification already exists for the same user, task and day.
var ErrDuplicateNotification = errors.New("duplicate notification")

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification. A unique-index violation on the dedup key
// is translated into ErrDuplicateNotification so callers can treat it as
// already-sent.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateNotification
		}
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ExistsForDay reports whether a notification of the given type already
// exists for (user, task) on the given calendar day.
func (r *NotificationRepository) ExistsForDay(ctx context.Context, userID, taskID uuid.UUID, typ model.NotificationType, day string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND task_id = ? AND type = ? AND dedup_day = ?", userID, taskID, typ, day).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the newest notifications for a user, excluding ones
// the user deleted.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var ns []model.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read != ?", userID, model.ReadStateDeleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&ns).Error; err != nil {
		return nil, err
	}
	return ns, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", model.ReadStateRead)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkDeleted soft-deletes one notification for the user.
func (r *NotificationRepository) MarkDeleted(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", model.ReadStateDeleted)
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllDeleted soft-deletes every notification of the user.
func (r *NotificationRepository) MarkAllDeleted(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", model.ReadStateDeleted).Error; err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
