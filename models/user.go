package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient       UserRole = "client"
	RoleProfessional UserRole = "professional"
	RoleAdmin        UserRole = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Phone        string    `json:"phone" gorm:"size:20"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'client';check:role IN ('client','professional','admin')"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate defaults the role to client.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	return nil
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return true
	default:
		return false
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsProfessional() bool {
	return u.Role == RoleProfessional
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}
