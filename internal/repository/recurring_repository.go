package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// ErrStaleNextRun reports that a definition's next run date no longer
// matches the value read at selection time; another tick already consumed
// the slot.
var ErrStaleNextRun = errors.New("stale next run date")

// RecurringRepository handles persistence for recurring definitions.
type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) Create(ctx context.Context, def *model.RecurringDefinition) error {
	if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
		return fmt.Errorf("create recurring definition: %w", err)
	}
	return nil
}

func (r *RecurringRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringDefinition, error) {
	var def model.RecurringDefinition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

// ListDue returns schedule-mode definitions whose next run date is at or
// before the given instant. Completion-mode definitions never show up
// here; they advance only when their previous instance completes.
func (r *RecurringRepository) ListDue(ctx context.Context, by time.Time) ([]model.RecurringDefinition, error) {
	var defs []model.RecurringDefinition
	if err := r.db.WithContext(ctx).
		Where("recurrence_trigger = ? AND next_run_date <= ?", model.TriggerSchedule, by).
		Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

// AdvanceNextRun moves the next run date forward. The guard keeps the
// date monotonic when concurrent ticks race over the same definition:
// a stale `from` matches no row and returns ErrStaleNextRun, so the
// caller's transaction rolls back instead of committing a duplicate
// instance.
func (r *RecurringRepository) AdvanceNextRun(ctx context.Context, id uuid.UUID, from, to time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.RecurringDefinition{}).
		Where("id = ? AND next_run_date = ?", id, from).
		Update("next_run_date", to)
	if res.Error != nil {
		return fmt.Errorf("advance next run date: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleNextRun
	}
	return nil
}

// ListVisible returns definitions scoped to a tenant. Non-elevated callers
// only see definitions they created or are assigned to.
func (r *RecurringRepository) ListVisible(ctx context.Context, tenantID, userID uuid.UUID, elevated bool) ([]model.RecurringDefinition, error) {
	q := r.db.WithContext(ctx).Model(&model.RecurringDefinition{})
	if tenantID != uuid.Nil {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if !elevated {
		q = q.Where("assigned_to = ? OR created_by = ?", userID, userID)
	}
	var defs []model.RecurringDefinition
	if err := q.Order("created_at DESC").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}
