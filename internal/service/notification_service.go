package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// NotificationService is the in-app notification sink. For reminder and
// overdue types it enforces at most one notification per user, task and
// calendar day: a fast-path existence check, then the storage-level unique
// index as the authoritative guard.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Create persists a notification dated at the given instant. It reports
// whether a new record was written; a suppressed duplicate returns
// (false, nil).
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID, message string, typ model.NotificationType, at time.Time) (bool, error) {
	if !typ.Valid() {
		return false, apperr.Validation("unrecognized notification type")
	}

	day := dedupDay(at)
	if typ == model.NotificationReminder || typ == model.NotificationOverdue {
		if taskID != nil {
			exists, err := s.repo.ExistsForDay(ctx, userID, *taskID, typ, day)
			if err != nil {
				return false, err
			}
			if exists {
				return false, nil
			}
		}
	}

	n := model.Notification{
		UserID:   userID,
		TaskID:   taskID,
		Message:  message,
		Type:     typ,
		IsRead:   model.ReadStateUnread,
		DedupDay: day,
	}
	err := s.repo.Create(ctx, &n)
	if errors.Is(err, repository.ErrDuplicateNotification) {
		// A concurrent tick won the race; the notification exists.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns the user's notifications, excluding deleted ones.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, 100)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification not found")
	}
	return err
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.MarkDeleted(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification not found")
	}
	return err
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllDeleted(ctx, userID)
}
