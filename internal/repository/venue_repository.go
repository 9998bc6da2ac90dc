package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Venue, error)
	Create(ctx context.Context, v *model.Venue) error
	// Активные поля; пустой ids — все.
	ListActive(ctx context.Context, ids []int64) ([]model.Venue, error)
}

type GormVenueRepository struct {
	db *gorm.DB
}

func NewGormVenueRepository(db *gorm.DB) *GormVenueRepository {
	return &GormVenueRepository{db: db}
}

func (r *GormVenueRepository) GetByID(ctx context.Context, id int64) (*model.Venue, error) {
	var v model.Venue
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormVenueRepository) Create(ctx context.Context, v *model.Venue) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *GormVenueRepository) ListActive(ctx context.Context, ids []int64) ([]model.Venue, error) {
	var venues []model.Venue
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("id ASC").Find(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}
