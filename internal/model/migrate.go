package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Частичный уникальный индекс: не более одной активной заявки на (расписание, участник).
const activeReservationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_member
ON reservations (schedule_id, member_id)
WHERE status NOT IN ('cancelled', 'deleted')`

// AutoMigrate выполняет миграцию всех сущностей клубного ядра.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Venue{},
		&Member{},
		&Schedule{},
		&Reservation{},
		&Notification{},
		&Event{},
	); err != nil {
		return err
	}
	if err := db.Exec(activeReservationIndex).Error; err != nil {
		return fmt.Errorf("create active reservation index: %w", err)
	}
	return nil
}
