package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// User stores the fields the core touches: identity, role and the points
// ledger. Account management itself lives outside this service.
type User struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid"`
	Username string    `gorm:"uniqueIndex;not null"`
	Role     Role      `gorm:"not null;default:'user'"`
	Points   int       `gorm:"not null;default:0"`
	TenantID uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}
