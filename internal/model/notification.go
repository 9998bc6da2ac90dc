package model

import "time"

type NotificationType string

const (
	NotificationTypeSchedule    NotificationType = "schedule"
	NotificationTypeReservation NotificationType = "reservation"
	NotificationTypeWaitlist    NotificationType = "waitlist"
	NotificationTypeGeneral     NotificationType = "general"
)

// notifications — входящие уведомления участника.
type Notification struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	MemberID int64            `gorm:"not null;index" json:"member_id"`
	Type     NotificationType `gorm:"type:varchar(32);not null" json:"type"`

	Title string `gorm:"type:varchar(255);not null" json:"title"`
	Body  string `gorm:"type:text" json:"body"`
	URL   string `gorm:"type:varchar(255)" json:"url,omitempty"`

	IsRead bool `gorm:"not null;default:false" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
