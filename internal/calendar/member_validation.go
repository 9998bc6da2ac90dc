package calendar

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/model"
)

// Ошибки валидации участника.
var (
	ErrInvalidMemberID = errors.New("invalid member id")
	ErrMemberNotFound  = errors.New("member not found")
	ErrMemberInactive  = errors.New("member is inactive")
)

// Источник данных об участниках.
// В реале это репозиторий, в тестах — мок.
type MemberStore interface {
	GetByID(ctx context.Context, id int64) (*model.Member, error)
}

// ValidateMember:
//   - проверяет корректность идентификатора;
//   - вытаскивает участника из хранилища;
//   - отклоняет неактивных.
func ValidateMember(ctx context.Context, store MemberStore, id int64) (*model.Member, error) {
	if id <= 0 {
		return nil, ErrInvalidMemberID
	}

	m, err := store.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}

	if m.Status == model.MemberStatusInactive {
		return nil, ErrMemberInactive
	}
	return m, nil
}
