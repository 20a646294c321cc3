package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

func TestCreateDefinitionManagerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRecurringService(t, db, time.Now())
	worker := seedUser(t, db, "worker", model.RoleUser)

	_, err := svc.CreateDefinition(context.Background(), actorFor(worker), DefinitionInput{
		Title:      "Weekly report",
		Frequency:  model.FrequencyWeekly,
		AssignedTo: worker.ID,
		StartDate:  time.Now(),
	})
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestCreateDefinitionValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestRecurringService(t, db, time.Now())
	manager := seedUser(t, db, "boss", model.RoleManager)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	cases := []struct {
		name  string
		input DefinitionInput
	}{
		{"missing title", DefinitionInput{Frequency: model.FrequencyDaily, AssignedTo: worker.ID, StartDate: time.Now()}},
		{"bad frequency", DefinitionInput{Title: "x", Frequency: model.Frequency("hourly"), AssignedTo: worker.ID, StartDate: time.Now()}},
		{"bad trigger", DefinitionInput{Title: "x", Frequency: model.FrequencyDaily, Trigger: model.Trigger("manual"), AssignedTo: worker.ID, StartDate: time.Now()}},
		{"missing assignee", DefinitionInput{Title: "x", Frequency: model.FrequencyDaily, StartDate: time.Now()}},
		{"missing start date", DefinitionInput{Title: "x", Frequency: model.FrequencyDaily, AssignedTo: worker.ID}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateDefinition(ctx, actorFor(manager), tc.input); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestWeeklyScheduleGeneration(t *testing.T) {
	db := newTestDB(t)
	start := mustDate(t, "2024-01-01")
	svc := newTestRecurringService(t, db, start)
	manager := seedUser(t, db, "boss", model.RoleManager)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	def, err := svc.CreateDefinition(ctx, actorFor(manager), DefinitionInput{
		Title:      "Weekly report",
		Frequency:  model.FrequencyWeekly,
		Trigger:    model.TriggerSchedule,
		AssignedTo: worker.ID,
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}

	// Start date is today, so the first instance exists immediately and
	// the next run moves a week out.
	var first model.Task
	if err := db.Where("recurring_task_id = ?", def.ID).First(&first).Error; err != nil {
		t.Fatalf("load first instance: %v", err)
	}
	if first.DueDate == nil || !first.DueDate.Equal(endOfDay(start)) {
		t.Errorf("first due = %v, want %v", first.DueDate, endOfDay(start))
	}
	if want := start.AddDate(0, 0, 7); !def.NextRunDate.Equal(want) {
		t.Errorf("next run = %v, want %v", def.NextRunDate, want)
	}

	// A tick before the next run date generates nothing.
	if n := svc.Tick(ctx, mustDate(t, "2024-01-05")); n != 0 {
		t.Errorf("early tick generated %d tasks", n)
	}

	tickDay := mustDate(t, "2024-01-08")
	if n := svc.Tick(ctx, tickDay); n != 1 {
		t.Fatalf("tick generated %d tasks, want 1", n)
	}

	var instances []model.Task
	if err := db.Where("recurring_task_id = ?", def.ID).Order("created_at").Find(&instances).Error; err != nil {
		t.Fatalf("load instances: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("instances = %d, want 2", len(instances))
	}
	second := instances[1]
	if second.DueDate == nil || !second.DueDate.Equal(endOfDay(tickDay)) {
		t.Errorf("second due = %v, want %v", second.DueDate, endOfDay(tickDay))
	}

	var reloaded model.RecurringDefinition
	if err := db.First(&reloaded, "id = ?", def.ID).Error; err != nil {
		t.Fatalf("reload definition: %v", err)
	}
	if want := start.AddDate(0, 0, 14); !reloaded.NextRunDate.Equal(want) {
		t.Errorf("next run after tick = %v, want %v", reloaded.NextRunDate, want)
	}

	// Running the same tick again must not duplicate the instance.
	if n := svc.Tick(ctx, tickDay); n != 0 {
		t.Errorf("repeat tick generated %d tasks", n)
	}
	if got := countTasks(t, db); got != 2 {
		t.Errorf("tasks after repeat tick = %d, want 2", got)
	}
}

func TestFutureStartDateWaits(t *testing.T) {
	db := newTestDB(t)
	now := mustDate(t, "2024-01-01")
	svc := newTestRecurringService(t, db, now)
	manager := seedUser(t, db, "boss", model.RoleManager)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	def, err := svc.CreateDefinition(ctx, actorFor(manager), DefinitionInput{
		Title:      "Quarterly audit",
		Frequency:  model.FrequencyMonthly,
		Trigger:    model.TriggerSchedule,
		AssignedTo: worker.ID,
		StartDate:  mustDate(t, "2024-02-01"),
	})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}

	if got := countTasks(t, db); got != 0 {
		t.Fatalf("tasks at creation = %d, want 0", got)
	}
	if n := svc.Tick(ctx, now); n != 0 {
		t.Errorf("tick before start generated %d tasks", n)
	}

	startDay := mustDate(t, "2024-02-01")
	if n := svc.Tick(ctx, startDay); n != 1 {
		t.Fatalf("tick on start day generated %d tasks, want 1", n)
	}

	var reloaded model.RecurringDefinition
	if err := db.First(&reloaded, "id = ?", def.ID).Error; err != nil {
		t.Fatalf("reload definition: %v", err)
	}
	if want := startDay.AddDate(0, 1, 0); !reloaded.NextRunDate.Equal(want) {
		t.Errorf("next run = %v, want %v", reloaded.NextRunDate, want)
	}
}

func TestCompletionTriggerBootstrapsOnce(t *testing.T) {
	db := newTestDB(t)
	now := mustDate(t, "2024-01-01")
	svc := newTestRecurringService(t, db, now)
	manager := seedUser(t, db, "boss", model.RoleManager)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	def, err := svc.CreateDefinition(ctx, actorFor(manager), DefinitionInput{
		Title:      "Restock supplies",
		Frequency:  model.FrequencyDaily,
		Trigger:    model.TriggerCompletion,
		AssignedTo: worker.ID,
		StartDate:  now,
	})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}

	// Completion-mode definitions still generate their first instance at
	// creation, but ticks never pick them up.
	if got := countTasks(t, db); got != 1 {
		t.Fatalf("tasks at creation = %d, want 1", got)
	}
	if n := svc.Tick(ctx, now.AddDate(0, 0, 3)); n != 0 {
		t.Errorf("tick generated %d tasks for completion-mode definition", n)
	}
	if !def.NextRunDate.Equal(now) {
		t.Errorf("next run = %v, want unchanged %v", def.NextRunDate, now)
	}
}

func TestOverlappingTicksGenerateOneInstancePerSlot(t *testing.T) {
	db := newTestDB(t)
	start := mustDate(t, "2024-01-01")
	svc := newTestRecurringService(t, db, start)
	manager := seedUser(t, db, "boss", model.RoleManager)
	worker := seedUser(t, db, "worker", model.RoleUser)
	ctx := context.Background()

	def, err := svc.CreateDefinition(ctx, actorFor(manager), DefinitionInput{
		Title:      "Weekly report",
		Frequency:  model.FrequencyWeekly,
		Trigger:    model.TriggerSchedule,
		AssignedTo: worker.ID,
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("create definition: %v", err)
	}

	// Two ticks overlap: both list the due definition, one commits first.
	tickDay := mustDate(t, "2024-01-08")
	defsA, err := repository.NewRecurringRepository(db).ListDue(ctx, endOfDay(tickDay))
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(defsA) != 1 {
		t.Fatalf("due definitions = %d, want 1", len(defsA))
	}

	if n := svc.Tick(ctx, tickDay); n != 1 {
		t.Fatalf("first tick generated %d tasks, want 1", n)
	}

	// The slower tick now applies its per-definition transaction with the
	// stale snapshot. The stale next_run_date must roll back the whole
	// transaction, including the task it created.
	stale := &defsA[0]
	err = db.Transaction(func(tx *gorm.DB) error {
		task := taskFromDefinition(stale, endOfDay(tickDay))
		if err := repository.NewTaskRepository(tx).Create(ctx, task); err != nil {
			return err
		}
		next := addFrequency(stale.NextRunDate, stale.Frequency)
		return repository.NewRecurringRepository(tx).AdvanceNextRun(ctx, stale.ID, stale.NextRunDate, next)
	})
	if !errors.Is(err, repository.ErrStaleNextRun) {
		t.Fatalf("stale advance: expected ErrStaleNextRun, got %v", err)
	}

	// One bootstrap instance plus one for the slot; no duplicate.
	var count int64
	if err := db.Model(&model.Task{}).Where("recurring_task_id = ?", def.ID).Count(&count).Error; err != nil {
		t.Fatalf("count instances: %v", err)
	}
	if count != 2 {
		t.Errorf("instances = %d, want 2", count)
	}

	var reloaded model.RecurringDefinition
	if err := db.First(&reloaded, "id = ?", def.ID).Error; err != nil {
		t.Fatalf("reload definition: %v", err)
	}
	if want := start.AddDate(0, 0, 14); !reloaded.NextRunDate.Equal(want) {
		t.Errorf("next run = %v, want %v", reloaded.NextRunDate, want)
	}
}
