package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"taskflow/internal/apperr"
	"taskflow/internal/auth"
	"taskflow/internal/model"
)

// completionAward is the fixed number of points granted to the assignee
// when a task first reaches completed.
const completionAward = 10

// event is a side effect emitted by a successful transition. The applying
// service routes events to the points ledger, the recurring engine and the
// audit log; the transition functions themselves only touch the task.
type event interface{ isEvent() }

type pointsAwarded struct {
	UserID uuid.UUID
	Amount int
}

type spawnFromDefinition struct {
	DefinitionID uuid.UUID
}

type auditRecord struct {
	Action  string
	Details string
}

func (pointsAwarded) isEvent()       {}
func (spawnFromDefinition) isEvent() {}
func (auditRecord) isEvent()         {}

// transitionStatus validates and applies a status change on the task in
// memory. On error the task is untouched.
func transitionStatus(task *model.Task, newStatus model.Status, actor auth.Context, note string, now time.Time) ([]event, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unrecognized status %q", newStatus))
	}

	isAssignee := task.AssignedTo == actor.UserID
	isManager := actor.Manager()
	if !isAssignee && !isManager {
		return nil, apperr.Authorization("you are not assigned to this task")
	}

	note = strings.TrimSpace(note)

	if task.Status == newStatus {
		// Nothing changes; in particular no points are awarded and no
		// override reason is demanded.
		return nil, nil
	}

	// A manager acting on someone else's task always documents why.
	override := isManager && !isAssignee
	if override && note == "" {
		return nil, apperr.Authorization("changing status requires an override reason")
	}

	if !override {
		var blocked string
		switch {
		case task.Status == model.StatusCompleted:
			blocked = "cannot revert a completed task"
		case task.Status == model.StatusInProgress && newStatus == model.StatusPending:
			blocked = "cannot move task back to pending"
		}
		if blocked != "" {
			if !isManager {
				return nil, apperr.Precondition(blocked)
			}
			if note == "" {
				return nil, apperr.Authorization("management override requires a documented reason")
			}
			override = true
		}
	}

	prev := task.Status
	task.Status = newStatus
	if override {
		task.LastOverrideReason = &note
	}

	action := "Status Updated"
	details := fmt.Sprintf("Status changed from %s to %s", prev, newStatus)
	if override {
		action = "Status Override"
		details += ". Reason: " + note
	}
	events := []event{auditRecord{Action: action, Details: details}}

	if newStatus == model.StatusCompleted {
		events = append(events, completionEvents(task, now)...)
	}
	return events, nil
}

// transitionStage validates and applies an execution-workflow step. The
// stage argument also accepts the pseudo-stages "review" and "completed",
// which move status without advancing the recorded stage.
func transitionStage(task *model.Task, stage string, actor auth.Context, note string, now time.Time) ([]event, error) {
	if stage == "" {
		return nil, apperr.Validation("new stage required")
	}
	if !task.RequiresExecutionWorkflow {
		return nil, apperr.Validation("task has no execution workflow")
	}

	isAssignee := task.AssignedTo == actor.UserID
	isManager := actor.Manager()
	if !isAssignee && !isManager {
		return nil, apperr.Authorization("you are not assigned to this task")
	}

	note = strings.TrimSpace(note)

	override := isManager && !isAssignee
	if override && note == "" {
		return nil, apperr.Authorization("management override requires a documented reason")
	}

	// ensure rejects an out-of-order step for plain assignees and upgrades
	// it to an override for managers who documented a reason.
	ensure := func(inOrder bool, blocked string) error {
		if inOrder {
			return nil
		}
		if !isManager {
			return apperr.Precondition(blocked)
		}
		if note == "" {
			return apperr.Authorization("management override requires a documented reason")
		}
		override = true
		return nil
	}

	prevStage := task.ExecutionStage
	prevStatus := task.Status
	var events []event

	switch stage {
	case string(model.StageStarted):
		if err := ensure(prevStage == model.StageNotStarted, "task already started"); err != nil {
			return nil, err
		}
		task.ExecutionStage = model.StageStarted
		if task.StartedAt == nil {
			at := now
			task.StartedAt = &at
		}
		task.Status = model.StatusInProgress

	case string(model.StageLocalDone):
		if err := ensure(prevStage == model.StageStarted, "task must be started first"); err != nil {
			return nil, err
		}
		task.ExecutionStage = model.StageLocalDone
		if task.LocalRunAt == nil {
			at := now
			task.LocalRunAt = &at
		}

	case string(model.StageLiveDone):
		if err := ensure(prevStage == model.StageLocalDone, "task must be locally tested first"); err != nil {
			return nil, err
		}
		task.ExecutionStage = model.StageLiveDone
		if task.LiveRunAt == nil {
			at := now
			task.LiveRunAt = &at
		}

	case "review":
		if err := ensure(prevStage == model.StageLiveDone, "task must be deployed live first"); err != nil {
			return nil, err
		}
		task.Status = model.StatusWaitingForReview

	case "completed":
		inOrder := prevStage == model.StageLiveDone || prevStatus == model.StatusWaitingForReview
		if err := ensure(inOrder, "task cannot be completed yet"); err != nil {
			return nil, err
		}
		task.Status = model.StatusCompleted
		if prevStatus != model.StatusCompleted {
			events = append(events, completionEvents(task, now)...)
		}

	case string(model.StageNotStarted):
		// Reset is a management action regardless of ordering.
		if !isManager {
			return nil, apperr.Authorization("only managers can reset tasks")
		}
		if !isAssignee && note == "" {
			return nil, apperr.Authorization("management override requires a documented reason")
		}
		task.ExecutionStage = model.StageNotStarted
		task.Status = model.StatusPending
		task.StartedAt = nil
		task.LocalRunAt = nil
		task.LiveRunAt = nil
		task.CompletedAt = nil

	default:
		return nil, apperr.Validation(fmt.Sprintf("invalid stage %q", stage))
	}

	if override {
		task.LastOverrideReason = &note
	}

	action := "Stage Updated"
	details := fmt.Sprintf("Moved from %s to %s", prevStage, stage)
	if override {
		action = "Stage Override"
		details += " [OVERRIDE REASON: " + note + "]"
	} else if note != "" {
		details += ". Note: " + note
	}
	return append([]event{auditRecord{Action: action, Details: details}}, events...), nil
}

// completionEvents stamps completed_at and emits the side effects of a
// first transition into completed.
func completionEvents(task *model.Task, now time.Time) []event {
	if task.CompletedAt == nil {
		at := now
		task.CompletedAt = &at
	}
	events := []event{pointsAwarded{UserID: task.AssignedTo, Amount: completionAward}}
	if task.RecurringTaskID != nil {
		events = append(events, spawnFromDefinition{DefinitionID: *task.RecurringTaskID})
	}
	return events
}
