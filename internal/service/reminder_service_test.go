package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

func newTestReminderService(t *testing.T, db *gorm.DB) *ReminderService {
	t.Helper()
	notifications := NewNotificationService(repository.NewNotificationRepository(db))
	return NewReminderService(repository.NewTaskRepository(db), notifications)
}

func seedDueTask(t *testing.T, db *gorm.DB, assignee *model.User, title string, due time.Time, status model.Status) *model.Task {
	t.Helper()
	dueAt := due
	task := model.Task{
		Title:      title,
		Priority:   model.PriorityMedium,
		Status:     status,
		DueDate:    &dueAt,
		AssignedTo: assignee.ID,
		CreatedBy:  assignee.ID,
	}
	if err := repository.NewTaskRepository(db).Create(context.Background(), &task); err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return &task
}

func TestReminderTickBeforeEvening(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReminderService(t, db)
	worker := seedUser(t, db, "worker", model.RoleUser)

	noon := mustDate(t, "2024-05-20").Add(12 * time.Hour)
	seedDueTask(t, db, worker, "File expense report", endOfDay(noon), model.StatusPending)

	stats := svc.Tick(context.Background(), noon)
	if stats.Reminders != 0 {
		t.Errorf("reminders before evening = %d, want 0", stats.Reminders)
	}
	if got := countNotifications(t, db, model.NotificationReminder); got != 0 {
		t.Errorf("reminder notifications = %d, want 0", got)
	}
}

func TestReminderTickAtEveningDeduplicates(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReminderService(t, db)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	evening := mustDate(t, "2024-05-20").Add(22 * time.Hour)
	seedDueTask(t, db, worker, "File expense report", endOfDay(evening), model.StatusPending)
	seedDueTask(t, db, worker, "Already finished", endOfDay(evening), model.StatusCompleted)

	stats := svc.Tick(ctx, evening)
	if stats.Reminders != 1 {
		t.Fatalf("reminders = %d, want 1", stats.Reminders)
	}

	// The same evening tick runs again, e.g. after a process restart.
	stats = svc.Tick(ctx, evening.Add(30*time.Minute))
	if stats.Reminders != 0 {
		t.Errorf("repeat reminders = %d, want 0", stats.Reminders)
	}
	if got := countNotifications(t, db, model.NotificationReminder); got != 1 {
		t.Errorf("reminder notifications = %d, want 1", got)
	}
}

func TestOverdueTickDailyDedup(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReminderService(t, db)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	morning := mustDate(t, "2024-05-21").Add(9 * time.Hour)
	seedDueTask(t, db, worker, "Renew certificate", endOfDay(mustDate(t, "2024-05-19")), model.StatusPending)
	seedDueTask(t, db, worker, "Closed out late", endOfDay(mustDate(t, "2024-05-19")), model.StatusCompleted)

	stats := svc.Tick(ctx, morning)
	if stats.Overdue != 1 {
		t.Fatalf("overdue = %d, want 1", stats.Overdue)
	}

	stats = svc.Tick(ctx, morning.Add(2*time.Hour))
	if stats.Overdue != 0 {
		t.Errorf("repeat overdue = %d, want 0", stats.Overdue)
	}

	// The next calendar day notifies again.
	stats = svc.Tick(ctx, morning.AddDate(0, 0, 1))
	if stats.Overdue != 1 {
		t.Errorf("next-day overdue = %d, want 1", stats.Overdue)
	}
	if got := countNotifications(t, db, model.NotificationOverdue); got != 2 {
		t.Errorf("overdue notifications = %d, want 2", got)
	}
}

func TestDueTodayNotOverdue(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReminderService(t, db)
	worker := seedUser(t, db, "worker", model.RoleUser)

	morning := mustDate(t, "2024-05-21").Add(9 * time.Hour)
	seedDueTask(t, db, worker, "Due tonight", endOfDay(morning), model.StatusPending)

	stats := svc.Tick(context.Background(), morning)
	if stats.Overdue != 0 {
		t.Errorf("overdue = %d, want 0 for a task due today", stats.Overdue)
	}
}
