package repository

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// UserRepository exposes the slices of the user record the core needs:
// lookups and the points ledger.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementPoints adds to the user's points ledger.
func (r *UserRepository) IncrementPoints(ctx context.Context, id uuid.UUID, amount int) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", amount)).Error; err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	return nil
}
