package models

import (
	"time"
)

type NotificationKind string

const (
	NotificationSystem NotificationKind = "system"
	NotificationEmail  NotificationKind = "email"
	NotificationPush   NotificationKind = "push"
)

type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;index"`
	User      *User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title     string           `json:"title" gorm:"type:varchar(200);not null"`
	Body      string           `json:"body" gorm:"type:text;not null"`
	Kind      NotificationKind `json:"kind" gorm:"type:varchar(20);not null;default:'system'"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
