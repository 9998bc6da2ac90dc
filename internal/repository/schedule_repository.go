package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/golf-club/internal/model"
)

type ScheduleRepository interface {
	// GetByID возвращает расписание вместе с полем.
	GetByID(ctx context.Context, id int64) (*model.Schedule, error)
	Create(ctx context.Context, s *model.Schedule) error
	// ExistsOn — есть ли расписание на поле в эту дату.
	ExistsOn(ctx context.Context, venueID int64, date time.Time) (bool, error)
	// PreviousAtVenue — последнее расписание поля строго раньше date.
	PreviousAtVenue(ctx context.Context, venueID int64, date time.Time) (*model.Schedule, error)
	UpdateStatus(ctx context.Context, id int64, status model.ScheduleStatus) error
	// Update пишет только переданные колонки.
	Update(ctx context.Context, id int64, fields map[string]any) error
	// Delete удаляет расписание без заявок, иначе ErrHasReservations.
	Delete(ctx context.Context, id int64) error
	// OpenDue переводит pending-расписания с open_at <= now в open.
	OpenDue(ctx context.Context, now time.Time) ([]model.Schedule, error)
	// ListFrom — незавершённые расписания начиная с даты, по возрастанию даты.
	ListFrom(ctx context.Context, from time.Time) ([]model.Schedule, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

func (r *GormScheduleRepository) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	var s model.Schedule
	if err := r.db.WithContext(ctx).Preload("Venue").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	s.PlayDate = dateOf(time.Time(s.PlayDate))
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormScheduleRepository) ExistsOn(ctx context.Context, venueID int64, date time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("venue_id = ? AND play_date = ?", venueID, dateOf(date)).
		Count(&n).Error
	return n > 0, err
}

func (r *GormScheduleRepository) PreviousAtVenue(ctx context.Context, venueID int64, date time.Time) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		Where("venue_id = ? AND play_date < ?", venueID, dateOf(date)).
		Order("play_date DESC").
		Take(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) UpdateStatus(ctx context.Context, id int64, status model.ScheduleStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormScheduleRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormScheduleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Schedule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.Reservation{}).Where("schedule_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrHasReservations
		}
		return tx.Delete(&model.Schedule{}, "id = ?", id).Error
	})
}

func (r *GormScheduleRepository) OpenDue(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	var opened []model.Schedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND open_at IS NOT NULL AND open_at <= ?", model.ScheduleStatusPending, now.UTC()).
			Order("play_date ASC").
			Find(&opened).Error; err != nil {
			return err
		}
		if len(opened) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(opened))
		for i := range opened {
			ids = append(ids, opened[i].ID)
			opened[i].Status = model.ScheduleStatusOpen
		}
		return tx.Model(&model.Schedule{}).
			Where("id IN ?", ids).
			Update("status", model.ScheduleStatusOpen).Error
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

func (r *GormScheduleRepository) ListFrom(ctx context.Context, from time.Time) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Where("play_date >= ? AND status <> ?", dateOf(from), model.ScheduleStatusCompleted).
		Order("play_date ASC").
		Order("id ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
