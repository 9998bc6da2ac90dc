package model

import "time"

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// members
type Member struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Phone string `gorm:"type:varchar(32)" json:"phone,omitempty"`

	// Администраторы управляют расписанием, но сами не записываются.
	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`

	Status MemberStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
