package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"servify-server/apperrors"
	"servify-server/models"
)

// ChatService stores messages exchanged between a client and the
// professional of a proposal. Clients poll for new messages.
type ChatService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewChatService(db *gorm.DB, log *zap.SugaredLogger) *ChatService {
	return &ChatService{db: db, log: log.Named("chat")}
}

// participantProposal loads a proposal and checks that actor is either the
// solicitation's client or the proposal's professional.
func participantProposal(db *gorm.DB, actor Actor, proposalID uint) (*models.Proposal, error) {
	proposal, err := loadProposal(db, proposalID)
	if err != nil {
		return nil, err
	}
	if actor.ProfessionalID != 0 && proposal.ProfessionalID == actor.ProfessionalID {
		return proposal, nil
	}

	var solicitation models.Solicitation
	if err := db.Select("id", "client_id").First(&solicitation, proposal.SolicitationID).Error; err != nil {
		return nil, notFound(err, "solicitation not found")
	}
	if solicitation.ClientID != actor.UserID {
		return nil, apperrors.Forbidden("you are not a participant of this proposal")
	}
	return proposal, nil
}

// PostMessage appends a message to an accepted proposal's conversation.
func (s *ChatService) PostMessage(ctx context.Context, actor Actor, proposalID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("content is required", "content")
	}

	db := s.db.WithContext(ctx)
	proposal, err := participantProposal(db, actor, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalAccepted {
		return nil, apperrors.InvalidState("messages can only be sent on an accepted proposal")
	}

	message := models.Message{
		ProposalID: proposal.ID,
		SenderID:   actor.UserID,
		Content:    content,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, dbError(err, "failed to send message")
	}

	s.log.Debugw("message posted", "proposal_id", proposal.ID, "sender_id", actor.UserID)
	return &message, nil
}

// ListMessages returns the whole conversation, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, actor Actor, proposalID uint) ([]models.Message, error) {
	db := s.db.WithContext(ctx)
	if _, err := participantProposal(db, actor, proposalID); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0)
	if err := db.Where("proposal_id = ?", proposalID).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, dbError(err, "failed to list messages")
	}
	return messages, nil
}
