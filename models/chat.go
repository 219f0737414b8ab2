package models

import (
	"time"
)

// Message is a chat line exchanged on an accepted proposal.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProposalID uint      `json:"proposal_id" gorm:"not null;index"`
	Proposal   *Proposal `json:"-" gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	SenderID   uint      `json:"sender_id" gorm:"not null"`
	Sender     *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	SentAt     time.Time `json:"sent_at" gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
