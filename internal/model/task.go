package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Task represents a single work item moving through the status lifecycle.
type Task struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Title       string    `gorm:"not null"`
	Description string
	Priority    Priority `gorm:"not null;default:'medium'"`
	Status      Status   `gorm:"not null;default:'pending';index"`
	DueDate     *time.Time

	AssignedTo uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	ProjectID  *uuid.UUID
	ParentID   *uuid.UUID

	// RecurringTaskID links a generated instance back to its definition.
	RecurringTaskID *uuid.UUID `gorm:"index"`

	// Execution workflow. Stage fields only carry meaning when
	// RequiresExecutionWorkflow is set.
	RequiresExecutionWorkflow bool  `gorm:"default:false"`
	ExecutionStage            Stage `gorm:"not null;default:'not_started'"`
	StartedAt                 *time.Time
	LocalRunAt                *time.Time
	LiveRunAt                 *time.Time
	CompletedAt               *time.Time

	// LastOverrideReason holds the justification of the most recent
	// manager override. It persists until the next override.
	LastOverrideReason *string

	IsExtended bool `gorm:"default:false"`

	// QuestionsJSON carries the checklist payload copied verbatim from a
	// recurring definition template.
	QuestionsJSON *string

	TenantID  uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return nil
}
