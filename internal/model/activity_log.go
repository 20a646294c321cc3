package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ActivityLog is an append-only audit record. Writes are fire-and-forget:
// a failed audit insert never aborts the operation that produced it.
type ActivityLog struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid"`
	ActorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action  string    `gorm:"not null"`
	Details string
	TaskID  *uuid.UUID

	CreatedAt time.Time
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		l.ID = id
	}
	return nil
}
