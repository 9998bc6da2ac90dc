package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

type NotificationRepository interface {
	// CreateBatch сохраняет уведомления пачкой.
	CreateBatch(ctx context.Context, items []model.Notification) error
	// ListInbox — уведомления участника не старше since, новые первыми.
	ListInbox(ctx context.Context, memberID int64, since time.Time) ([]model.Notification, error)
	MarkRead(ctx context.Context, memberID, id int64) error
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateBatch(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *GormNotificationRepository) ListInbox(ctx context.Context, memberID int64, since time.Time) ([]model.Notification, error) {
	var out []model.Notification
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND created_at >= ?", memberID, since.UTC()).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, memberID, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND member_id = ?", id, memberID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
