package models

import (
	"time"
)

// Rating is the single review a client leaves once a solicitation's accepted
// proposal has been delivered.
type Rating struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	SolicitationID uint                 `json:"solicitation_id" gorm:"not null;uniqueIndex"`
	Solicitation   *Solicitation        `json:"-" gorm:"foreignKey:SolicitationID;constraint:OnDelete:CASCADE"`
	ClientID       *uint                `json:"client_id"`
	Client         *User                `json:"client,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	ProfessionalID uint                 `json:"professional_id" gorm:"not null;index"`
	Professional   *ProfessionalProfile `json:"-" gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE"`
	Score          int                  `json:"score" gorm:"type:int;not null;check:score >= 1 AND score <= 5"`
	Comment        string               `json:"comment" gorm:"type:text"`
	CreatedAt      time.Time            `json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

const (
	MinScore = 1
	MaxScore = 5
)
