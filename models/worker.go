package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultServiceRadiusKm = 10

// ProfessionalProfile holds the public side of a professional account. Score
// is the mean of every rating received, rounded to two decimals, and is only
// written by the rating aggregator.
type ProfessionalProfile struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	UserID          uint              `json:"user_id" gorm:"uniqueIndex;not null"`
	User            *User             `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Bio             string            `json:"bio" gorm:"type:text"`
	Score           decimal.Decimal   `json:"score" gorm:"type:decimal(3,2);not null;default:0"`
	ServiceRadiusKm int               `json:"service_radius_km" gorm:"not null;default:10"`
	Offerings       []ServiceOffering `json:"offerings,omitempty" gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (ProfessionalProfile) TableName() string {
	return "professional_profiles"
}

// PublicProfile is what anyone may see about a professional.
type PublicProfile struct {
	Profile       ProfessionalProfile `json:"profile"`
	RecentRatings []Rating            `json:"recent_ratings"`
}
