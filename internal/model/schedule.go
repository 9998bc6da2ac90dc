package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type ScheduleStatus string

const (
	// Запись ещё не открыта, откроется в OpenAt.
	ScheduleStatusPending   ScheduleStatus = "pending"
	ScheduleStatusOpen      ScheduleStatus = "open"
	ScheduleStatusClosed    ScheduleStatus = "closed"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusOpen, ScheduleStatusClosed, ScheduleStatusCompleted:
		return true
	}
	return false
}

// schedules — один игровой день на поле.
type Schedule struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	VenueID  int64         `gorm:"not null;uniqueIndex:idx_schedules_venue_date" json:"venue_id"`
	PlayDate datatypes.Date `gorm:"type:date;not null;uniqueIndex:idx_schedules_venue_date;index" json:"play_date"`

	// Ти-таймы через запятую в порядке старта: "06:00,06:08,06:16".
	TeeTimes string `gorm:"type:varchar(255)" json:"tee_times"`

	MaxMembers int `gorm:"not null;default:12" json:"max_members"`

	Status ScheduleStatus `gorm:"type:varchar(16);not null;default:'open';index" json:"status"`
	OpenAt *time.Time     `gorm:"index" json:"open_at,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Venue *Venue `gorm:"foreignKey:VenueID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"venue,omitempty"`
}

// TeeTimeList разбирает строку ти-таймов, пустые элементы отбрасываются.
func (s *Schedule) TeeTimeList() []string {
	if s == nil || strings.TrimSpace(s.TeeTimes) == "" {
		return nil
	}
	parts := strings.Split(s.TeeTimes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Capacity — вместимость расписания; если не задана, берётся значение поля.
func (s *Schedule) Capacity(venue *Venue) int {
	if s != nil && s.MaxMembers > 0 {
		return s.MaxMembers
	}
	return venue.Capacity()
}

// Date возвращает дату игры как time.Time (UTC, полночь).
func (s *Schedule) Date() time.Time {
	t := time.Time(s.PlayDate)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
