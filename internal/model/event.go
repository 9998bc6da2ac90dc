package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeReservationApplied   EventType = "reservation_applied"
	EventTypeReservationCancelled EventType = "reservation_cancelled"
	EventTypeReservationPromoted  EventType = "reservation_promoted"
	EventTypeStatusOverridden     EventType = "status_overridden"
	EventTypeReservationDeleted   EventType = "reservation_deleted"
	EventTypeReservationPurged    EventType = "reservation_hard_deleted"
	EventTypeBookedByAdmin        EventType = "booked_by_admin"
	EventTypeTeamsAssigned        EventType = "teams_assigned"
	EventTypeTeamsSwapped         EventType = "teams_swapped"
	EventTypeSwapReverted         EventType = "swap_reverted"
	EventTypeScheduleOpened       EventType = "schedule_opened"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	// Кто выполнил действие (nil для фоновых задач).
	ActorID       *int64 `gorm:"index" json:"actor_id,omitempty"`
	ScheduleID    *int64 `gorm:"index" json:"schedule_id,omitempty"`
	ReservationID *int64 `gorm:"index" json:"reservation_id,omitempty"`

	Details string `gorm:"type:text" json:"details,omitempty"`
}

// BeforeCreate — uuid генерируется на стороне приложения, чтобы не зависеть от gen_random_uuid().
func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
