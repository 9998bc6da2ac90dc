// Package handlers — HTTP API клуба поверх менеджера заявок и администрирования расписаний.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/golf-club/internal/notify"
	"github.com/Leganyst/golf-club/internal/reservation"
	"github.com/Leganyst/golf-club/internal/schedule"
)

type Handlers struct {
	mgr       *reservation.Manager
	schedules *schedule.Service
	inbox     *notify.InApp
	loc       *time.Location
	log       *zap.Logger
}

func New(mgr *reservation.Manager, schedules *schedule.Service, inbox *notify.InApp, loc *time.Location, log *zap.Logger) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{mgr: mgr, schedules: schedules, inbox: inbox, loc: loc, log: log}
}

type apiError struct {
	status int
	code   string
}

// classify сопоставляет доменные ошибки со статусом HTTP и кодом ответа.
func classify(err error) apiError {
	switch {
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, schedule.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return apiError{http.StatusNotFound, "NOT_FOUND"}
	case errors.Is(err, reservation.ErrForbidden):
		return apiError{http.StatusForbidden, "FORBIDDEN"}
	case errors.Is(err, reservation.ErrDuplicateReservation):
		return apiError{http.StatusConflict, "DUPLICATE_RESERVATION"}
	case errors.Is(err, schedule.ErrScheduleExists):
		return apiError{http.StatusConflict, "SCHEDULE_EXISTS"}
	case errors.Is(err, schedule.ErrScheduleHasReservations):
		return apiError{http.StatusConflict, "SCHEDULE_HAS_RESERVATIONS"}
	case errors.Is(err, reservation.ErrCompletedSchedule):
		return apiError{http.StatusBadRequest, "SCHEDULE_COMPLETED"}
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		return apiError{http.StatusBadRequest, "ALREADY_CANCELLED"}
	case errors.Is(err, reservation.ErrNoSwapHistory):
		return apiError{http.StatusBadRequest, "NO_SWAP_HISTORY"}
	case errors.Is(err, reservation.ErrInvalidSchedule):
		return apiError{http.StatusBadRequest, "INVALID_SCHEDULE"}
	case errors.Is(err, reservation.ErrInvalidTeeTime):
		return apiError{http.StatusBadRequest, "INVALID_TEE_TIME"}
	case errors.Is(err, reservation.ErrInvalidStatus):
		return apiError{http.StatusBadRequest, "INVALID_STATUS"}
	case errors.Is(err, reservation.ErrInvalidSwap),
		errors.Is(err, reservation.ErrTeamMismatch):
		return apiError{http.StatusBadRequest, "INVALID_SWAP"}
	case errors.Is(err, schedule.ErrInvalidInput):
		return apiError{http.StatusBadRequest, "INVALID_INPUT"}
	case reservation.IsStorage(err):
		return apiError{http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"}
	}
	return apiError{http.StatusInternalServerError, "INTERNAL"}
}

func (h *Handlers) fail(c *gin.Context, op string, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", zap.Error(err))
	}
	c.JSON(e.status, gin.H{"error": err.Error(), "code": e.code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "INVALID_INPUT"})
}

// idParam разбирает положительный int64 из пути.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
