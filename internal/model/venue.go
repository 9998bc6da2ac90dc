package model

import "time"

const (
	DefaultMaxMembers     = 12
	DefaultTeeIntervalMin = 8
	DefaultTeeCount       = 3
)

// Venue — гольф-поле, на котором проводятся выезды.
type Venue struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Location string `gorm:"type:varchar(255)" json:"location,omitempty"`

	// Вместимость по умолчанию для новых расписаний.
	MaxMembers int `gorm:"not null;default:12" json:"max_members"`

	// Номер недели месяца (1..5), на субботу которой генерируется расписание.
	ScheduleWeek int `gorm:"not null;default:1" json:"schedule_week"`

	// Первый ти-тайм ("06:00"), шаг и количество слотов.
	TeeTimeStart   string `gorm:"type:varchar(5);not null;default:'06:00'" json:"tee_time_start"`
	TeeIntervalMin int    `gorm:"not null;default:8" json:"tee_interval_min"`
	TeeCount       int    `gorm:"not null;default:3" json:"tee_count"`

	IsActive bool `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Capacity возвращает вместимость поля с учётом значения по умолчанию.
func (v *Venue) Capacity() int {
	if v == nil || v.MaxMembers <= 0 {
		return DefaultMaxMembers
	}
	return v.MaxMembers
}
