package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"taskflow/internal/auth"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// newTestDB opens a named in-memory database so every test gets its own
// isolated store with the full migration set applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()
	user := model.User{Username: username, Role: role}
	if err := repository.NewUserRepository(db).Create(context.Background(), &user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func actorFor(user *model.User) auth.Context {
	return auth.Context{UserID: user.ID, Role: user.Role, TenantID: user.TenantID}
}

func newTestTaskService(t *testing.T, db *gorm.DB, now time.Time) *TaskService {
	t.Helper()
	audit := NewAuditService(repository.NewActivityRepository(db))
	notifications := NewNotificationService(repository.NewNotificationRepository(db))
	svc := NewTaskService(db, repository.NewUserRepository(db), notifications, audit)
	svc.now = func() time.Time { return now }
	return svc
}

func newTestRecurringService(t *testing.T, db *gorm.DB, now time.Time) *RecurringService {
	t.Helper()
	svc := NewRecurringService(db, NewAuditService(repository.NewActivityRepository(db)))
	svc.now = func() time.Time { return now }
	return svc
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func countTasks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	return count
}

func countNotifications(t *testing.T, db *gorm.DB, typ model.NotificationType) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Notification{}).Where("type = ?", typ).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}
