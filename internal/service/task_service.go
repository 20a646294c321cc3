package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/apperr"
	"taskflow/internal/auth"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title                     string
	Description               string
	Priority                  model.Priority
	DueDate                   *time.Time
	AssignedTo                uuid.UUID
	ProjectID                 *uuid.UUID
	ParentID                  *uuid.UUID
	RequiresExecutionWorkflow bool
	Questions                 *string
}

// TaskService owns every task mutation: creation, the status and stage
// state machines with their side effects, and the soft-delete lifecycle.
type TaskService struct {
	db            *gorm.DB
	users         *repository.UserRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewTaskService(db *gorm.DB, users *repository.UserRepository, notifications *NotificationService, audit *AuditService) *TaskService {
	return &TaskService{
		db:            db,
		users:         users,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

// Create makes a new task. Only elevated roles may create tasks; the
// assignee gets an assignment notification unless they created it.
func (s *TaskService) Create(ctx context.Context, actor auth.Context, input TaskInput) (*model.Task, error) {
	if !actor.Manager() {
		return nil, apperr.Authorization("only admin, manager or owner can create tasks")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unrecognized priority %q", input.Priority))
	}
	if input.AssignedTo == uuid.Nil {
		input.AssignedTo = actor.UserID
	}

	task := model.Task{
		Title:                     input.Title,
		Description:               input.Description,
		Priority:                  input.Priority,
		Status:                    model.StatusPending,
		DueDate:                   input.DueDate,
		AssignedTo:                input.AssignedTo,
		CreatedBy:                 actor.UserID,
		ProjectID:                 input.ProjectID,
		ParentID:                  input.ParentID,
		RequiresExecutionWorkflow: input.RequiresExecutionWorkflow,
		ExecutionStage:            model.StageNotStarted,
		QuestionsJSON:             input.Questions,
		TenantID:                  actor.TenantID,
	}
	if err := repository.NewTaskRepository(s.db).Create(ctx, &task); err != nil {
		return nil, apperr.Persistence("unable to create task", err)
	}

	if task.AssignedTo != actor.UserID {
		s.notifyAssignment(ctx, actor, &task)
	}
	s.audit.Record(ctx, actor.UserID, "Task Created", "Created task: "+task.Title, &task.ID)

	return &task, nil
}

func (s *TaskService) notifyAssignment(ctx context.Context, actor auth.Context, task *model.Task) {
	creatorName := "Admin"
	if creator, err := s.users.FindByID(ctx, actor.UserID); err == nil {
		creatorName = fmt.Sprintf("%s (%s)", creator.Username, creator.Role)
	}
	msg := fmt.Sprintf("New Task Assigned: '%s' by %s.", task.Title, creatorName)
	if task.DueDate != nil {
		msg += " Due: " + task.DueDate.Format("2006-01-02 15:04:05")
	}
	if _, err := s.notifications.Create(ctx, task.AssignedTo, &task.ID, msg, model.NotificationAssignment, s.now()); err != nil {
		log.Printf("assignment notification: %v", err)
	}
}

// Get returns a task visible to the actor.
func (s *TaskService) Get(ctx context.Context, actor auth.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := repository.NewTaskRepository(s.db).FindByID(ctx, actor.TenantID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, apperr.Persistence("unable to load task", err)
	}
	if !actor.Manager() && task.AssignedTo != actor.UserID && task.CreatedBy != actor.UserID {
		return nil, apperr.Authorization("access denied")
	}
	return task, nil
}

// List returns tasks visible to the actor within their tenant.
func (s *TaskService) List(ctx context.Context, actor auth.Context) ([]model.Task, error) {
	tasks, err := repository.NewTaskRepository(s.db).ListVisible(ctx, actor.TenantID, actor.UserID, actor.Manager())
	if err != nil {
		return nil, apperr.Persistence("unable to list tasks", err)
	}
	return tasks, nil
}

// UpdateStatus runs the status state machine on one task. The read, the
// rule checks and the write happen in a single transaction so a manager
// override and a concurrent assignee transition cannot lose updates.
func (s *TaskService) UpdateStatus(ctx context.Context, actor auth.Context, taskID uuid.UUID, newStatus model.Status, note string) (*model.Task, error) {
	return s.transition(ctx, actor, taskID, func(task *model.Task, now time.Time) ([]event, error) {
		return transitionStatus(task, newStatus, actor, note, now)
	})
}

// UpdateStage runs the execution-workflow state machine on one task.
func (s *TaskService) UpdateStage(ctx context.Context, actor auth.Context, taskID uuid.UUID, stage, note string) (*model.Task, error) {
	return s.transition(ctx, actor, taskID, func(task *model.Task, now time.Time) ([]event, error) {
		return transitionStage(task, stage, actor, note, now)
	})
}

func (s *TaskService) transition(ctx context.Context, actor auth.Context, taskID uuid.UUID, apply func(*model.Task, time.Time) ([]event, error)) (*model.Task, error) {
	now := s.now()
	var task *model.Task
	var events []event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)

		t, err := tasks.FindByID(ctx, actor.TenantID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("task not found")
		}
		if err != nil {
			return apperr.Persistence("unable to load task", err)
		}

		evs, err := apply(t, now)
		if err != nil {
			return err
		}
		if evs == nil {
			// No-op transition; nothing to persist.
			task = t
			return nil
		}

		if err := tasks.Save(ctx, t); err != nil {
			return apperr.Persistence("unable to update task", err)
		}

		evs, err = s.applySideEffects(ctx, tx, t, evs, now)
		if err != nil {
			return err
		}

		task = t
		events = evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		if rec, ok := ev.(auditRecord); ok {
			s.audit.Record(ctx, actor.UserID, rec.Action, rec.Details, &task.ID)
		}
	}
	return task, nil
}

// applySideEffects handles non-audit events inside the transaction: the
// points award and completion-triggered regeneration. It may append audit
// events for the work it performed.
func (s *TaskService) applySideEffects(ctx context.Context, tx *gorm.DB, task *model.Task, events []event, now time.Time) ([]event, error) {
	for _, ev := range events {
		switch e := ev.(type) {
		case pointsAwarded:
			if err := repository.NewUserRepository(tx).IncrementPoints(ctx, e.UserID, e.Amount); err != nil {
				return nil, apperr.Persistence("unable to award points", err)
			}

		case spawnFromDefinition:
			def, err := repository.NewRecurringRepository(tx).FindByID(ctx, e.DefinitionID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Definition was removed; the task keeps its dangling
				// back-reference but nothing regenerates.
				log.Printf("recurring definition %s not found for task %s", e.DefinitionID, task.ID)
				continue
			}
			if err != nil {
				return nil, apperr.Persistence("unable to load recurring definition", err)
			}
			if def.Trigger != model.TriggerCompletion {
				continue
			}
			// The next instance is due one frequency unit from the
			// completion day, not from the original schedule.
			due := endOfDay(addFrequency(now, def.Frequency))
			next := taskFromDefinition(def, due)
			if err := repository.NewTaskRepository(tx).Create(ctx, next); err != nil {
				return nil, apperr.Persistence("unable to generate next recurring task", err)
			}
			events = append(events, auditRecord{
				Action:  "Recurring Task Generated",
				Details: fmt.Sprintf("Generated next task from completion of '%s'", task.Title),
			})
		}
	}
	return events, nil
}

// Delete soft-deletes a task. Status is untouched; the record moves to the
// trash until restored or purged.
func (s *TaskService) Delete(ctx context.Context, actor auth.Context, taskID uuid.UUID) error {
	if !actor.Manager() {
		return apperr.Authorization("access denied")
	}
	err := repository.NewTaskRepository(s.db).SoftDelete(ctx, actor.TenantID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("task not found")
	}
	if err != nil {
		return apperr.Persistence("unable to delete task", err)
	}
	s.audit.Record(ctx, actor.UserID, "Task Deleted", "Deleted task ID: "+taskID.String(), &taskID)
	return nil
}

// Trash lists soft-deleted tasks for the actor's tenant.
func (s *TaskService) Trash(ctx context.Context, actor auth.Context) ([]model.Task, error) {
	if !actor.Manager() {
		return nil, apperr.Authorization("access denied")
	}
	tasks, err := repository.NewTaskRepository(s.db).ListTrash(ctx, actor.TenantID)
	if err != nil {
		return nil, apperr.Persistence("unable to list trash", err)
	}
	return tasks, nil
}

// Restore brings a soft-deleted task back.
func (s *TaskService) Restore(ctx context.Context, actor auth.Context, taskID uuid.UUID) error {
	if !actor.Manager() {
		return apperr.Authorization("access denied")
	}
	err := repository.NewTaskRepository(s.db).Restore(ctx, actor.TenantID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("task not found")
	}
	if err != nil {
		return apperr.Persistence("unable to restore task", err)
	}
	s.audit.Record(ctx, actor.UserID, "Task Restored", "Restored task ID: "+taskID.String(), &taskID)
	return nil
}

// Purge removes a task permanently.
func (s *TaskService) Purge(ctx context.Context, actor auth.Context, taskID uuid.UUID) error {
	if !actor.Manager() {
		return apperr.Authorization("access denied")
	}
	err := repository.NewTaskRepository(s.db).Purge(ctx, actor.TenantID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("task not found")
	}
	if err != nil {
		return apperr.Persistence("unable to purge task", err)
	}
	s.audit.Record(ctx, actor.UserID, "Task Permanently Deleted", "Permanently deleted task ID: "+taskID.String(), &taskID)
	return nil
}

// ExtendDeadline moves the due date and marks the task extended.
func (s *TaskService) ExtendDeadline(ctx context.Context, actor auth.Context, taskID uuid.UUID, due time.Time) (*model.Task, error) {
	if !actor.Manager() {
		return nil, apperr.Authorization("access denied")
	}

	tasks := repository.NewTaskRepository(s.db)
	task, err := tasks.FindByID(ctx, actor.TenantID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, apperr.Persistence("unable to load task", err)
	}

	task.DueDate = &due
	task.IsExtended = true
	if err := tasks.Save(ctx, task); err != nil {
		return nil, apperr.Persistence("unable to extend deadline", err)
	}

	s.audit.Record(ctx, actor.UserID, "Task Deadline Extended",
		fmt.Sprintf("Extended deadline for task: %s to %s", task.Title, due.Format("2006-01-02")), &task.ID)
	return task, nil
}
