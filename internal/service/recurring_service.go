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

// DefinitionInput represents data required to create a recurring
// definition.
type DefinitionInput struct {
	Title       string
	Description string
	Priority    model.Priority
	AssignedTo  uuid.UUID
	ProjectID   *uuid.UUID
	Frequency   model.Frequency
	Trigger     model.Trigger
	StartDate   time.Time
	Questions   *string
}

// RecurringService owns recurring definitions and generates concrete task
// instances from them: immediately on creation when the start date has
// passed, and on each tick for schedule-mode definitions.
type RecurringService struct {
	db    *gorm.DB
	audit *AuditService
	now   func() time.Time
}

func NewRecurringService(db *gorm.DB, audit *AuditService) *RecurringService {
	return &RecurringService{db: db, audit: audit, now: time.Now}
}

// CreateDefinition persists a definition and, when its start date is not
// in the future, generates the first task at once regardless of trigger
// mode. A past start date must not wait for the next tick.
func (s *RecurringService) CreateDefinition(ctx context.Context, actor auth.Context, input DefinitionInput) (*model.RecurringDefinition, error) {
	if !actor.Manager() {
		return nil, apperr.Authorization("access denied")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if !input.Frequency.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unrecognized frequency %q", input.Frequency))
	}
	if input.Trigger == "" {
		input.Trigger = model.TriggerSchedule
	}
	if !input.Trigger.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unrecognized recurrence trigger %q", input.Trigger))
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unrecognized priority %q", input.Priority))
	}
	if input.AssignedTo == uuid.Nil {
		return nil, apperr.Validation("assigned_to is required")
	}
	if input.StartDate.IsZero() {
		return nil, apperr.Validation("start_date is required")
	}

	now := s.now()
	start := startOfDay(input.StartDate)

	def := model.RecurringDefinition{
		Title:         input.Title,
		Description:   input.Description,
		Priority:      input.Priority,
		AssignedTo:    input.AssignedTo,
		ProjectID:     input.ProjectID,
		Frequency:     input.Frequency,
		Trigger:       input.Trigger,
		StartDate:     start,
		NextRunDate:   start,
		QuestionsJSON: input.Questions,
		CreatedBy:     actor.UserID,
		TenantID:      actor.TenantID,
	}

	bootstrap := !start.After(now)
	if bootstrap && def.Trigger == model.TriggerSchedule {
		// The immediate instance consumes the first scheduled run.
		def.NextRunDate = addFrequency(start, def.Frequency)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewRecurringRepository(tx).Create(ctx, &def); err != nil {
			return apperr.Persistence("unable to create recurring definition", err)
		}
		if bootstrap {
			first := taskFromDefinition(&def, endOfDay(start))
			if err := repository.NewTaskRepository(tx).Create(ctx, first); err != nil {
				return apperr.Persistence("unable to generate first task", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "Recurring Task Created",
		fmt.Sprintf("Created %s recurring definition: %s", def.Frequency, def.Title), nil)
	return &def, nil
}

// List returns definitions visible to the actor.
func (s *RecurringService) List(ctx context.Context, actor auth.Context) ([]model.RecurringDefinition, error) {
	defs, err := repository.NewRecurringRepository(s.db).ListVisible(ctx, actor.TenantID, actor.UserID, actor.Manager())
	if err != nil {
		return nil, apperr.Persistence("unable to list recurring definitions", err)
	}
	return defs, nil
}

// Tick generates a task for every schedule-mode definition due at or
// before now and advances each next run date by one frequency unit. A
// failure is confined to its definition; the rest of the batch proceeds.
func (s *RecurringService) Tick(ctx context.Context, now time.Time) int {
	defs, err := repository.NewRecurringRepository(s.db).ListDue(ctx, endOfDay(now))
	if err != nil {
		log.Printf("recurring tick: list due definitions: %v", err)
		return 0
	}

	generated := 0
	for i := range defs {
		def := &defs[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			task := taskFromDefinition(def, endOfDay(now))
			if err := repository.NewTaskRepository(tx).Create(ctx, task); err != nil {
				return err
			}
			next := addFrequency(def.NextRunDate, def.Frequency)
			return repository.NewRecurringRepository(tx).AdvanceNextRun(ctx, def.ID, def.NextRunDate, next)
		})
		if errors.Is(err, repository.ErrStaleNextRun) {
			// An overlapping tick already generated this slot.
			log.Printf("recurring tick: definition %s: slot already consumed", def.ID)
			continue
		}
		if err != nil {
			log.Printf("recurring tick: definition %s: %v", def.ID, err)
			continue
		}
		generated++
	}
	return generated
}

// taskFromDefinition instantiates the definition template as a pending
// task due at the given instant.
func taskFromDefinition(def *model.RecurringDefinition, due time.Time) *model.Task {
	defID := def.ID
	dueAt := due
	return &model.Task{
		Title:           def.Title,
		Description:     def.Description,
		Priority:        def.Priority,
		Status:          model.StatusPending,
		DueDate:         &dueAt,
		AssignedTo:      def.AssignedTo,
		CreatedBy:       def.CreatedBy,
		ProjectID:       def.ProjectID,
		RecurringTaskID: &defID,
		ExecutionStage:  model.StageNotStarted,
		QuestionsJSON:   def.QuestionsJSON,
		TenantID:        def.TenantID,
	}
}
