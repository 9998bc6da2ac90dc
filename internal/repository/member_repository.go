package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	FindByPhone(ctx context.Context, phone string) (*model.Member, error)
	Create(ctx context.Context, m *model.Member) error
	SetStatus(ctx context.Context, id int64, status model.MemberStatus) error
	// ID активных участников, кроме перечисленных.
	ListActiveIDs(ctx context.Context, except []int64) ([]int64, error)
}

type GormMemberRepository struct {
	db *gorm.DB
}

func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Keep only digits; ignore formatting characters.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormMemberRepository) FindByPhone(ctx context.Context, phone string) (*model.Member, error) {
	n := normalizePhone(phone)
	if n == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var m model.Member
	// Try normalized first, then raw (in case old data is not normalized).
	q := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("phone = ?", n)
	if strings.TrimSpace(phone) != n {
		q = q.Or("phone = ?", strings.TrimSpace(phone))
	}
	if err := q.First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) Create(ctx context.Context, m *model.Member) error {
	m.Phone = normalizePhone(m.Phone)
	if m.Status == "" {
		m.Status = model.MemberStatusActive
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormMemberRepository) SetStatus(ctx context.Context, id int64, status model.MemberStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Member{}).
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

func (r *GormMemberRepository) ListActiveIDs(ctx context.Context, except []int64) ([]int64, error) {
	var ids []int64
	q := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("status = ?", model.MemberStatusActive)
	if len(except) > 0 {
		q = q.Where("id NOT IN ?", except)
	}
	if err := q.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
