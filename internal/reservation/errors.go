package reservation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/repository"
)

// Ошибки, видимые вызывающему. Транспорт сопоставляет их с кодами ответа.
var (
	ErrInvalidSchedule      = errors.New("schedule does not exist or is not open")
	ErrDuplicateReservation = errors.New("member already holds an active reservation for this schedule")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidStatus        = errors.New("invalid reservation status")
	ErrCompletedSchedule    = errors.New("schedule is already completed")
	ErrNoSwapHistory        = errors.New("reservation has no swap to revert")
	ErrInvalidTeeTime       = errors.New("preferred tee time is not declared by the schedule")
	ErrAlreadyCancelled     = errors.New("reservation is already cancelled or deleted")
	ErrInvalidSwap          = errors.New("reservations cannot be swapped")
	ErrTeamMismatch         = errors.New("reservation is not in the expected team")
)

// StorageError — сбой хранилища. Операцию можно повторить.
type StorageError struct {
	Op  string
	Err error
	// Сколько записей уже сохранено до сбоя (для пакетной записи).
	Committed int
}

func (e *StorageError) Error() string {
	if e.Committed > 0 {
		return fmt.Sprintf("storage: %s (after %d committed): %v", e.Op, e.Committed, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Retryable() bool { return true }

// IsStorage сообщает, является ли err сбоем хранилища.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

var domainErrors = []error{
	ErrInvalidSchedule,
	ErrDuplicateReservation,
	ErrNotFound,
	ErrForbidden,
	ErrInvalidStatus,
	ErrCompletedSchedule,
	ErrNoSwapHistory,
	ErrInvalidTeeTime,
	ErrAlreadyCancelled,
	ErrInvalidSwap,
	ErrTeamMismatch,
}

// classify оставляет доменные ошибки как есть, not found из хранилища
// превращает в notFound, дубликаты — в ErrDuplicateReservation, остальное
// заворачивает в StorageError.
func classify(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateReservation
	}
	return &StorageError{Op: op, Err: err}
}
