package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	// События по расписанию, старые первыми.
	ListBySchedule(ctx context.Context, scheduleID int64) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormEventRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]model.Event, error) {
	var out []model.Event
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
