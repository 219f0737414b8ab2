package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SolicitationStatus is the lifecycle state of a client's service request.
type SolicitationStatus string

const (
	SolicitationOpen              SolicitationStatus = "open"
	SolicitationAwaitingProposals SolicitationStatus = "awaiting_proposals"
	SolicitationProposalAccepted  SolicitationStatus = "proposal_accepted"
	SolicitationInProgress        SolicitationStatus = "in_progress"
	SolicitationCompleted         SolicitationStatus = "completed"
	SolicitationCancelled         SolicitationStatus = "cancelled"
)

// AcceptsProposals reports whether professionals may still bid.
func (s SolicitationStatus) AcceptsProposals() bool {
	return s == SolicitationOpen || s == SolicitationAwaitingProposals
}

// Locked reports whether the solicitation has a winning proposal that is not
// yet settled by a rating. Locked solicitations can be neither edited nor deleted.
func (s SolicitationStatus) Locked() bool {
	return s == SolicitationProposalAccepted || s == SolicitationInProgress
}

func (s SolicitationStatus) IsValid() bool {
	switch s {
	case SolicitationOpen, SolicitationAwaitingProposals, SolicitationProposalAccepted,
		SolicitationInProgress, SolicitationCompleted, SolicitationCancelled:
		return true
	default:
		return false
	}
}

type Solicitation struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	ClientID    uint               `json:"client_id" gorm:"not null;index"`
	Client      *User              `json:"client,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	CategoryID  uint               `json:"category_id" gorm:"not null;index"`
	Category    *Category          `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Title       string             `json:"title" gorm:"type:varchar(200);not null"`
	Description string             `json:"description" gorm:"type:text"`
	Location    string             `json:"location" gorm:"type:varchar(200)"`
	Status      SolicitationStatus `json:"status" gorm:"type:varchar(30);not null;default:'open';index"`
	Proposals   []Proposal         `json:"proposals,omitempty" gorm:"foreignKey:SolicitationID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (Solicitation) TableName() string {
	return "solicitations"
}

type ProposalStatus string

const (
	ProposalSubmitted ProposalStatus = "submitted"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalCancelled ProposalStatus = "cancelled"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalSubmitted, ProposalAccepted, ProposalRejected, ProposalCancelled:
		return true
	default:
		return false
	}
}

// Proposal is a professional's bid on a solicitation. A professional bids at
// most once per solicitation.
type Proposal struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	SolicitationID uint                 `json:"solicitation_id" gorm:"not null;uniqueIndex:idx_proposal_solicitation_professional"`
	ProfessionalID uint                 `json:"professional_id" gorm:"not null;uniqueIndex:idx_proposal_solicitation_professional"`
	Professional   *ProfessionalProfile `json:"professional,omitempty" gorm:"foreignKey:ProfessionalID;constraint:OnDelete:CASCADE"`
	Amount         decimal.Decimal      `json:"amount" gorm:"type:decimal(10,2);not null"`
	DurationDays   int                  `json:"duration_days" gorm:"not null"`
	Message        string               `json:"message" gorm:"type:text"`
	Status         ProposalStatus       `json:"status" gorm:"type:varchar(20);not null;default:'submitted';index"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}
