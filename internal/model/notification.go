package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Notification is a persisted in-app message for one user, optionally
// referring to a task.
type Notification struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TaskID  *uuid.UUID
	Message string           `gorm:"not null"`
	Type    NotificationType `gorm:"not null"`
	IsRead  ReadState        `gorm:"not null;default:0"`

	// DedupDay is the calendar day of creation in YYYY-MM-DD form. A partial
	// unique index over (user_id, task_id, type, dedup_day) for reminder and
	// overdue types is the authoritative duplicate guard; application-level
	// checks are only a fast path.
	DedupDay string `gorm:"size:10"`

	CreatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		n.ID = id
	}
	if n.DedupDay == "" {
		n.DedupDay = time.Now().Format("2006-01-02")
	}
	return nil
}
