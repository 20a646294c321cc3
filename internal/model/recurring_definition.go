package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// RecurringDefinition is the template and schedule from which concrete
// task instances are generated.
type RecurringDefinition struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Title       string    `gorm:"not null"`
	Description string
	Priority    Priority  `gorm:"not null;default:'medium'"`
	AssignedTo  uuid.UUID `gorm:"type:uuid;not null"`
	ProjectID   *uuid.UUID

	Frequency Frequency `gorm:"not null"`
	Trigger   Trigger   `gorm:"column:recurrence_trigger;not null;default:'schedule'"`
	StartDate time.Time `gorm:"not null"`

	// NextRunDate drives schedule-mode generation. It only moves forward,
	// one frequency unit per generated instance.
	NextRunDate time.Time `gorm:"index"`

	QuestionsJSON *string

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	TenantID  uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *RecurringDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		d.ID = id
	}
	return nil
}
