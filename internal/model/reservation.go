package model

import (
	"fmt"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusWaitlist  ReservationStatus = "waitlist"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusDeleted   ReservationStatus = "deleted"
)

// ActiveReservationStatuses — статусы, занимающие место в расписании.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
}

// InactiveReservationStatuses — статусы, не участвующие в проверке дубликатов.
var InactiveReservationStatuses = []ReservationStatus{
	ReservationStatusCancelled,
	ReservationStatusDeleted,
}

// ParseReservationStatus проверяет строку на принадлежность закрытому набору статусов.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusWaitlist,
		ReservationStatusCancelled, ReservationStatusDeleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// HoldsSeat — pending или confirmed.
func (s ReservationStatus) HoldsSeat() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// IsActive — всё, кроме cancelled и deleted.
func (s ReservationStatus) IsActive() bool {
	return s != ReservationStatusCancelled && s != ReservationStatusDeleted && s != ""
}

// reservations — заявка участника на расписание.
type Reservation struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ScheduleID int64 `gorm:"not null;index" json:"schedule_id"`
	MemberID   int64 `gorm:"not null;index" json:"member_id"`

	Status ReservationStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	// 1 — участник играл на предыдущем выезде этого поля.
	Priority         int `gorm:"not null;default:0" json:"priority"`
	ConsecutiveCount int `gorm:"not null;default:0" json:"consecutive_count"`

	PreferredTeeTime string `gorm:"type:varchar(5)" json:"preferred_tee_time,omitempty"`

	TeamNumber *int    `json:"team_number,omitempty"`
	TeeTime    *string `gorm:"type:varchar(5)" json:"tee_time,omitempty"`

	AppliedAt time.Time `gorm:"not null;index" json:"applied_at"`

	// Лист ожидания выставлен распределением по командам. Любая другая смена
	// статуса сбрасывает флаг, и повторное распределение заявку не трогает.
	AssignmentWaitlist bool `gorm:"not null;default:false" json:"assignment_waitlist,omitempty"`

	// История обмена командами для отката.
	SwapPartnerID       *int64  `json:"swap_partner_id,omitempty"`
	SwapOriginalTeam    *int    `json:"swap_original_team,omitempty"`
	SwapOriginalTeeTime *string `gorm:"type:varchar(5)" json:"swap_original_tee_time,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Schedule *Schedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"schedule,omitempty"`
	Member   *Member   `gorm:"foreignKey:MemberID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"member,omitempty"`
}

// Team возвращает номер команды или 0, если команда не назначена.
func (r *Reservation) Team() int {
	if r.TeamNumber == nil {
		return 0
	}
	return *r.TeamNumber
}

// AssignedTeeTime возвращает назначенный ти-тайм или пустую строку.
func (r *Reservation) AssignedTeeTime() string {
	if r.TeeTime == nil {
		return ""
	}
	return *r.TeeTime
}

// HasSwapHistory — можно ли откатить обмен.
func (r *Reservation) HasSwapHistory() bool {
	return r.SwapPartnerID != nil && r.SwapOriginalTeam != nil
}
