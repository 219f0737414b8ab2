package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"servify-server/apperrors"
	"servify-server/config"
	"servify-server/database"
	"servify-server/models"
)

// LifecycleService drives solicitations and their proposals through the
// status graph. Every mutation runs in one transaction that holds a row lock
// on the solicitation, so concurrent transitions on the same solicitation
// are serialized.
type LifecycleService struct {
	db            *gorm.DB
	notifications *NotificationService
	ratings       *RatingService
	catalog       *CatalogService
	cfg           config.LifecycleConfig
	log           *zap.SugaredLogger
}

func NewLifecycleService(db *gorm.DB, notifications *NotificationService, ratings *RatingService, catalog *CatalogService, cfg config.LifecycleConfig, log *zap.SugaredLogger) *LifecycleService {
	return &LifecycleService{
		db:            db,
		notifications: notifications,
		ratings:       ratings,
		catalog:       catalog,
		cfg:           cfg,
		log:           log.Named("lifecycle"),
	}
}

type CreateSolicitationInput struct {
	CategoryID  uint
	Title       string
	Description string
	Location    string
}

type UpdateSolicitationInput struct {
	CategoryID  *uint
	Title       *string
	Description *string
	Location    *string
	Status      *models.SolicitationStatus
}

type SubmitProposalInput struct {
	SolicitationID uint
	Amount         decimal.Decimal
	DurationDays   int
	Message        string
}

type UpdateProposalInput struct {
	Amount       *decimal.Decimal
	DurationDays *int
	Message      *string
}

type ListSolicitationsInput struct {
	PageRequest
	Status     models.SolicitationStatus
	CategoryID uint
}

type ListProposalsInput struct {
	PageRequest
	Status         models.ProposalStatus
	SolicitationID uint
}

// lockSolicitation loads a solicitation and takes a row lock on it for the
// rest of the transaction.
func lockSolicitation(tx *gorm.DB, id uint) (*models.Solicitation, error) {
	var solicitation models.Solicitation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&solicitation, id).Error; err != nil {
		return nil, notFound(err, "solicitation not found")
	}
	return &solicitation, nil
}

func loadProposal(tx *gorm.DB, id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := tx.First(&proposal, id).Error; err != nil {
		return nil, notFound(err, "proposal not found")
	}
	return &proposal, nil
}

func professionalUserID(tx *gorm.DB, professionalID uint) (uint, error) {
	var profile models.ProfessionalProfile
	if err := tx.Select("id", "user_id").First(&profile, professionalID).Error; err != nil {
		return 0, notFound(err, "professional profile not found")
	}
	return profile.UserID, nil
}

func setSolicitationStatus(tx *gorm.DB, solicitation *models.Solicitation, status models.SolicitationStatus) error {
	if err := tx.Model(solicitation).Update("status", status).Error; err != nil {
		return dbError(err, "failed to update solicitation status")
	}
	solicitation.Status = status
	return nil
}

func setProposalStatus(tx *gorm.DB, proposal *models.Proposal, status models.ProposalStatus) error {
	if err := tx.Model(proposal).Update("status", status).Error; err != nil {
		return dbError(err, "failed to update proposal status")
	}
	proposal.Status = status
	return nil
}

func (s *LifecycleService) CreateSolicitation(ctx context.Context, actor Actor, in CreateSolicitationInput) (*models.Solicitation, error) {
	if err := actor.requireClient("create solicitations"); err != nil {
		return nil, err
	}
	if in.Title == "" || in.CategoryID == 0 {
		return nil, apperrors.Validation("title and category_id are required", "title", "category_id")
	}

	solicitation := models.Solicitation{
		ClientID:    actor.UserID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Status:      models.SolicitationOpen,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.catalog.requireCategory(tx, in.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&solicitation).Error; err != nil {
			return dbError(err, "failed to create solicitation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("solicitation created", "solicitation_id", solicitation.ID, "client_id", actor.UserID)
	return &solicitation, nil
}

// SubmitProposal records a professional's bid. The first bid moves the
// solicitation from open to awaiting_proposals, and the client is notified.
func (s *LifecycleService) SubmitProposal(ctx context.Context, actor Actor, in SubmitProposalInput) (*models.Proposal, error) {
	if err := actor.requireProfessional("submit proposals"); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.Validation("amount must be positive", "amount")
	}
	if in.DurationDays < 1 {
		return nil, apperrors.Validation("duration_days must be at least 1", "duration_days")
	}

	var proposal models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		solicitation, err := lockSolicitation(tx, in.SolicitationID)
		if err != nil {
			return err
		}
		if !solicitation.Status.AcceptsProposals() {
			return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and no longer accepts proposals", solicitation.Status))
		}

		var existing int64
		if err := tx.Model(&models.Proposal{}).
			Where("solicitation_id = ? AND professional_id = ?", solicitation.ID, actor.ProfessionalID).
			Count(&existing).Error; err != nil {
			return dbError(err, "failed to check existing proposals")
		}
		if existing > 0 {
			return apperrors.Conflict("you already submitted a proposal for this solicitation")
		}

		proposal = models.Proposal{
			SolicitationID: solicitation.ID,
			ProfessionalID: actor.ProfessionalID,
			Amount:         in.Amount.Round(2),
			DurationDays:   in.DurationDays,
			Message:        in.Message,
			Status:         models.ProposalSubmitted,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("you already submitted a proposal for this solicitation")
			}
			return dbError(err, "failed to create proposal")
		}

		if solicitation.Status == models.SolicitationOpen {
			if err := setSolicitationStatus(tx, solicitation, models.SolicitationAwaitingProposals); err != nil {
				return err
			}
		}

		return s.notifications.Enqueue(tx, solicitation.ClientID,
			"Nova proposta recebida",
			fmt.Sprintf("Você recebeu uma nova proposta para: %s", solicitation.Title),
			models.NotificationSystem)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("proposal submitted", "proposal_id", proposal.ID, "solicitation_id", proposal.SolicitationID, "professional_id", proposal.ProfessionalID)
	return &proposal, nil
}

// AcceptProposal makes proposal the winner of its solicitation. Every other
// submitted proposal on the same solicitation is rejected in the same
// transaction, so at most one proposal per solicitation is ever accepted.
func (s *LifecycleService) AcceptProposal(ctx context.Context, actor Actor, proposalID uint) (*models.Proposal, error) {
	var accepted *models.Proposal
	var rejected int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposal, err := loadProposal(tx, proposalID)
		if err != nil {
			return err
		}
		solicitation, err := lockSolicitation(tx, proposal.SolicitationID)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the solicitation owner can accept proposals")
		}

		// Re-read under the lock; a concurrent accept may have rejected it.
		if proposal, err = loadProposal(tx, proposalID); err != nil {
			return err
		}
		if proposal.Status != models.ProposalSubmitted {
			return apperrors.InvalidState(fmt.Sprintf("proposal is %s and can no longer be accepted", proposal.Status))
		}
		if !solicitation.Status.AcceptsProposals() {
			return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and can no longer accept a proposal", solicitation.Status))
		}

		if err := setProposalStatus(tx, proposal, models.ProposalAccepted); err != nil {
			return err
		}
		if err := setSolicitationStatus(tx, solicitation, models.SolicitationProposalAccepted); err != nil {
			return err
		}

		var siblings []models.Proposal
		if err := tx.Where("solicitation_id = ? AND id <> ? AND status = ?", solicitation.ID, proposal.ID, models.ProposalSubmitted).
			Find(&siblings).Error; err != nil {
			return dbError(err, "failed to load competing proposals")
		}
		if len(siblings) > 0 {
			ids := make([]uint, 0, len(siblings))
			for _, sibling := range siblings {
				ids = append(ids, sibling.ID)
			}
			if err := tx.Model(&models.Proposal{}).Where("id IN ?", ids).
				Update("status", models.ProposalRejected).Error; err != nil {
				return dbError(err, "failed to reject competing proposals")
			}
		}
		rejected = len(siblings)

		winnerUserID, err := professionalUserID(tx, proposal.ProfessionalID)
		if err != nil {
			return err
		}
		if err := s.notifications.Enqueue(tx, solicitation.ClientID,
			"Proposta aceita",
			fmt.Sprintf("Você aceitou uma proposta para: %s", solicitation.Title),
			models.NotificationSystem); err != nil {
			return err
		}
		if err := s.notifications.Enqueue(tx, winnerUserID,
			"Sua proposta foi aceita",
			fmt.Sprintf("Sua proposta para %s foi aceita pelo cliente", solicitation.Title),
			models.NotificationSystem); err != nil {
			return err
		}

		if s.cfg.NotifyAutoRejected {
			for _, sibling := range siblings {
				userID, err := professionalUserID(tx, sibling.ProfessionalID)
				if err != nil {
					return err
				}
				if err := s.notifications.Enqueue(tx, userID,
					"Proposta não selecionada",
					fmt.Sprintf("O cliente escolheu outra proposta para: %s", solicitation.Title),
					models.NotificationSystem); err != nil {
					return err
				}
			}
		}

		accepted = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("proposal accepted", "proposal_id", accepted.ID, "solicitation_id", accepted.SolicitationID, "auto_rejected", rejected)
	return accepted, nil
}

// RejectProposal declines a single proposal. The solicitation keeps
// accepting other bids.
func (s *LifecycleService) RejectProposal(ctx context.Context, actor Actor, proposalID uint) (*models.Proposal, error) {
	var rejected *models.Proposal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposal, err := loadProposal(tx, proposalID)
		if err != nil {
			return err
		}
		solicitation, err := lockSolicitation(tx, proposal.SolicitationID)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the solicitation owner can reject proposals")
		}
		if proposal, err = loadProposal(tx, proposalID); err != nil {
			return err
		}
		if proposal.Status != models.ProposalSubmitted {
			return apperrors.InvalidState(fmt.Sprintf("proposal is %s and can no longer be rejected", proposal.Status))
		}

		if err := setProposalStatus(tx, proposal, models.ProposalRejected); err != nil {
			return err
		}

		userID, err := professionalUserID(tx, proposal.ProfessionalID)
		if err != nil {
			return err
		}
		if err := s.notifications.Enqueue(tx, userID,
			"Proposta recusada",
			fmt.Sprintf("Sua proposta para %s foi recusada", solicitation.Title),
			models.NotificationSystem); err != nil {
			return err
		}

		rejected = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("proposal rejected", "proposal_id", rejected.ID, "solicitation_id", rejected.SolicitationID)
	return rejected, nil
}

func (s *LifecycleService) UpdateProposal(ctx context.Context, actor Actor, proposalID uint, in UpdateProposalInput) (*models.Proposal, error) {
	if err := actor.requireProfessional("edit proposals"); err != nil {
		return nil, err
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, apperrors.Validation("amount must be positive", "amount")
	}
	if in.DurationDays != nil && *in.DurationDays < 1 {
		return nil, apperrors.Validation("duration_days must be at least 1", "duration_days")
	}

	var updated *models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proposal, err := loadProposal(tx, proposalID)
		if err != nil {
			return err
		}
		if proposal.ProfessionalID != actor.ProfessionalID {
			return apperrors.Forbidden("only the author can edit a proposal")
		}
		if _, err := lockSolicitation(tx, proposal.SolicitationID); err != nil {
			return err
		}
		if proposal, err = loadProposal(tx, proposalID); err != nil {
			return err
		}
		if proposal.Status != models.ProposalSubmitted {
			return apperrors.InvalidState(fmt.Sprintf("proposal is %s and can no longer be edited", proposal.Status))
		}

		changes := map[string]interface{}{}
		if in.Amount != nil {
			changes["amount"] = in.Amount.Round(2)
		}
		if in.DurationDays != nil {
			changes["duration_days"] = *in.DurationDays
		}
		if in.Message != nil {
			changes["message"] = *in.Message
		}
		if len(changes) > 0 {
			if err := tx.Model(proposal).Updates(changes).Error; err != nil {
				return dbError(err, "failed to update proposal")
			}
		}

		updated, err = loadProposal(tx, proposalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LifecycleService) UpdateSolicitation(ctx context.Context, actor Actor, id uint, in UpdateSolicitationInput) (*models.Solicitation, error) {
	if in.Title != nil && *in.Title == "" {
		return nil, apperrors.Validation("title cannot be empty", "title")
	}
	if in.Status != nil && *in.Status != models.SolicitationCancelled && *in.Status != models.SolicitationOpen {
		return nil, apperrors.Validation("status can only be set to cancelled or open", "status")
	}

	var updated models.Solicitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		solicitation, err := lockSolicitation(tx, id)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the owner can edit a solicitation")
		}
		if solicitation.Status.Locked() || solicitation.Status == models.SolicitationCompleted {
			return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and can no longer be edited", solicitation.Status))
		}

		changes := map[string]interface{}{}
		if in.Title != nil {
			changes["title"] = *in.Title
		}
		if in.Description != nil {
			changes["description"] = *in.Description
		}
		if in.Location != nil {
			changes["location"] = *in.Location
		}
		if in.CategoryID != nil {
			if err := s.catalog.requireCategory(tx, *in.CategoryID); err != nil {
				return err
			}
			changes["category_id"] = *in.CategoryID
		}
		if in.Status != nil && *in.Status != solicitation.Status {
			if *in.Status == models.SolicitationCancelled && !solicitation.Status.AcceptsProposals() {
				return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and cannot be cancelled", solicitation.Status))
			}
			changes["status"] = *in.Status
		}
		if len(changes) > 0 {
			if err := tx.Model(solicitation).Updates(changes).Error; err != nil {
				return dbError(err, "failed to update solicitation")
			}
		}

		if err := tx.First(&updated, id).Error; err != nil {
			return dbError(err, "failed to reload solicitation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelSolicitation withdraws a solicitation that has no accepted proposal.
// Pending proposals keep their status.
func (s *LifecycleService) CancelSolicitation(ctx context.Context, actor Actor, id uint) (*models.Solicitation, error) {
	var cancelled *models.Solicitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		solicitation, err := lockSolicitation(tx, id)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the owner can cancel a solicitation")
		}
		if !solicitation.Status.AcceptsProposals() {
			return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and cannot be cancelled", solicitation.Status))
		}
		if err := setSolicitationStatus(tx, solicitation, models.SolicitationCancelled); err != nil {
			return err
		}
		cancelled = solicitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("solicitation cancelled", "solicitation_id", id)
	return cancelled, nil
}

// DeleteSolicitation removes a solicitation with its proposals and messages.
// Solicitations with an accepted, unrated proposal cannot be deleted. When a
// completed solicitation goes, its rating goes with it and the professional's
// score is recomputed.
func (s *LifecycleService) DeleteSolicitation(ctx context.Context, actor Actor, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		solicitation, err := lockSolicitation(tx, id)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the owner can delete a solicitation")
		}
		if solicitation.Status.Locked() {
			return apperrors.InvalidState(fmt.Sprintf("solicitation is %s and cannot be deleted", solicitation.Status))
		}

		var ratings []models.Rating
		if err := tx.Where("solicitation_id = ?", id).Find(&ratings).Error; err != nil {
			return dbError(err, "failed to load rating")
		}
		if len(ratings) > 0 {
			if err := tx.Where("solicitation_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
				return dbError(err, "failed to delete rating")
			}
		}

		if err := tx.Delete(solicitation).Error; err != nil {
			return dbError(err, "failed to delete solicitation")
		}

		for _, rating := range ratings {
			if err := s.ratings.RecomputeScore(tx, rating.ProfessionalID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Infow("solicitation deleted", "solicitation_id", id)
	return nil
}

// GetSolicitation returns a solicitation visible to actor. The owner also
// gets the proposals received.
func (s *LifecycleService) GetSolicitation(ctx context.Context, actor Actor, id uint) (*models.Solicitation, error) {
	db := s.db.WithContext(ctx)

	var solicitation models.Solicitation
	if err := db.Preload("Category").First(&solicitation, id).Error; err != nil {
		return nil, notFound(err, "solicitation not found")
	}

	switch {
	case actor.IsAdmin(), actor.IsProfessional():
	case solicitation.ClientID != actor.UserID:
		return nil, apperrors.Forbidden("solicitation belongs to another client")
	}

	if actor.IsAdmin() || solicitation.ClientID == actor.UserID {
		if err := db.Where("solicitation_id = ?", solicitation.ID).
			Order("created_at ASC, id ASC").
			Find(&solicitation.Proposals).Error; err != nil {
			return nil, dbError(err, "failed to load proposals")
		}
	}
	return &solicitation, nil
}

// ListSolicitations shows clients their own solicitations, professionals the
// ones still taking bids, and admins everything.
func (s *LifecycleService) ListSolicitations(ctx context.Context, actor Actor, in ListSolicitationsInput) (*Paginated[models.Solicitation], error) {
	query := s.db.WithContext(ctx).Model(&models.Solicitation{})

	switch {
	case actor.IsAdmin():
	case actor.IsProfessional():
		query = query.Where("status IN ?", []models.SolicitationStatus{models.SolicitationOpen, models.SolicitationAwaitingProposals})
	default:
		query = query.Where("client_id = ?", actor.UserID)
	}
	if in.Status != "" {
		query = query.Where("status = ?", in.Status)
	}
	if in.CategoryID != 0 {
		query = query.Where("category_id = ?", in.CategoryID)
	}

	page, err := paginate[models.Solicitation](query, in.PageRequest, "created_at DESC, id DESC", "Category")
	if err != nil {
		return nil, dbError(err, "failed to list solicitations")
	}
	return page, nil
}

// GetProposal is visible to the solicitation's client, the proposal's author
// and admins.
func (s *LifecycleService) GetProposal(ctx context.Context, actor Actor, id uint) (*models.Proposal, error) {
	db := s.db.WithContext(ctx)

	proposal, err := loadProposal(db, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || (actor.ProfessionalID != 0 && proposal.ProfessionalID == actor.ProfessionalID) {
		return proposal, nil
	}

	var solicitation models.Solicitation
	if err := db.Select("id", "client_id").First(&solicitation, proposal.SolicitationID).Error; err != nil {
		return nil, notFound(err, "solicitation not found")
	}
	if solicitation.ClientID != actor.UserID {
		return nil, apperrors.Forbidden("proposal is not visible to you")
	}
	return proposal, nil
}

func (s *LifecycleService) ListProposals(ctx context.Context, actor Actor, in ListProposalsInput) (*Paginated[models.Proposal], error) {
	query := s.db.WithContext(ctx).Model(&models.Proposal{})

	switch {
	case actor.IsAdmin():
	case actor.IsProfessional():
		query = query.Where("professional_id = ?", actor.ProfessionalID)
	default:
		query = query.Where("solicitation_id IN (?)",
			s.db.WithContext(ctx).Model(&models.Solicitation{}).Select("id").Where("client_id = ?", actor.UserID))
	}
	if in.Status != "" {
		query = query.Where("status = ?", in.Status)
	}
	if in.SolicitationID != 0 {
		query = query.Where("solicitation_id = ?", in.SolicitationID)
	}

	page, err := paginate[models.Proposal](query, in.PageRequest, "created_at DESC, id DESC")
	if err != nil {
		return nil, dbError(err, "failed to list proposals")
	}
	return page, nil
}
