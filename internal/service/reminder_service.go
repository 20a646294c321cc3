package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// reminderHour is the local hour from which due-today reminders go out.
const reminderHour = 22

// ReminderStats is the aggregate result of one reminder tick.
type ReminderStats struct {
	Reminders int
	Overdue   int
}

// ReminderService scans due and overdue tasks and emits deduplicated
// notifications to assignees. A tick never fails as a whole: per-task and
// per-query errors are logged and skipped so cron callers always get a
// processed result.
type ReminderService struct {
	tasks         *repository.TaskRepository
	notifications *NotificationService
}

func NewReminderService(tasks *repository.TaskRepository, notifications *NotificationService) *ReminderService {
	return &ReminderService{tasks: tasks, notifications: notifications}
}

// Tick processes due-today reminders (only at reminderHour or later) and
// daily overdue notices for the calendar day of now.
func (s *ReminderService) Tick(ctx context.Context, now time.Time) ReminderStats {
	var stats ReminderStats
	dayStart := startOfDay(now)

	if now.Hour() >= reminderHour {
		dueToday, err := s.tasks.ListDueBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			log.Printf("reminder tick: list due tasks: %v", err)
		} else {
			for i := range dueToday {
				task := &dueToday[i]
				msg := fmt.Sprintf("Reminder: Task '%s' is due today! Please complete it before midnight.", task.Title)
				created, err := s.notifications.Create(ctx, task.AssignedTo, &task.ID, msg, model.NotificationReminder, now)
				if err != nil {
					log.Printf("reminder tick: task %s: %v", task.ID, err)
					continue
				}
				if created {
					stats.Reminders++
				}
			}
		}
	}

	overdue, err := s.tasks.ListOverdue(ctx, dayStart)
	if err != nil {
		log.Printf("reminder tick: list overdue tasks: %v", err)
		return stats
	}
	for i := range overdue {
		task := &overdue[i]
		msg := fmt.Sprintf("Overdue: Task '%s' is overdue! Please complete it ASAP.", task.Title)
		created, err := s.notifications.Create(ctx, task.AssignedTo, &task.ID, msg, model.NotificationOverdue, now)
		if err != nil {
			log.Printf("reminder tick: task %s: %v", task.ID, err)
			continue
		}
		if created {
			stats.Overdue++
		}
	}
	return stats
}
