package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"servify-server/apperrors"
	"servify-server/database"
	"servify-server/models"
)

// RatingService records client ratings and keeps each professional's
// aggregate score equal to the rounded mean of the ratings they received.
type RatingService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewRatingService(db *gorm.DB, log *zap.SugaredLogger) *RatingService {
	return &RatingService{db: db, log: log.Named("ratings")}
}

type RateInput struct {
	SolicitationID uint
	Score          int
	Comment        string
}

type ListRatingsInput struct {
	PageRequest
	ProfessionalID uint
}

// MeanScore returns the arithmetic mean of sum over count rounded to two
// decimals, or zero when there is nothing to average.
func MeanScore(sum, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
}

// RateSolicitation stores the client's rating of the professional whose
// proposal was accepted, recomputes that professional's score and completes
// the solicitation.
func (s *RatingService) RateSolicitation(ctx context.Context, actor Actor, in RateInput) (*models.Rating, error) {
	if in.Score < models.MinScore || in.Score > models.MaxScore {
		return nil, apperrors.Validation(fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore), "score")
	}

	var rating models.Rating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		solicitation, err := lockSolicitation(tx, in.SolicitationID)
		if err != nil {
			return err
		}
		if solicitation.ClientID != actor.UserID {
			return apperrors.Forbidden("only the solicitation owner can rate it")
		}

		var existing int64
		if err := tx.Model(&models.Rating{}).Where("solicitation_id = ?", solicitation.ID).Count(&existing).Error; err != nil {
			return dbError(err, "failed to check existing rating")
		}
		if existing > 0 {
			return apperrors.Conflict("solicitation has already been rated")
		}

		var accepted models.Proposal
		err = tx.Where("solicitation_id = ? AND status = ?", solicitation.ID, models.ProposalAccepted).First(&accepted).Error
		if err != nil && !database.IsNotFound(err) {
			return apperrors.Internal("failed to load accepted proposal", err)
		}
		if err != nil || !solicitation.Status.Locked() {
			return apperrors.InvalidState("solicitation has no accepted proposal to rate")
		}

		clientID := actor.UserID
		rating = models.Rating{
			SolicitationID: solicitation.ID,
			ClientID:       &clientID,
			ProfessionalID: accepted.ProfessionalID,
			Score:          in.Score,
			Comment:        in.Comment,
		}
		if err := tx.Create(&rating).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("solicitation has already been rated")
			}
			return dbError(err, "failed to create rating")
		}

		if err := s.RecomputeScore(tx, accepted.ProfessionalID); err != nil {
			return err
		}
		return setSolicitationStatus(tx, solicitation, models.SolicitationCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("solicitation rated", "solicitation_id", rating.SolicitationID, "professional_id", rating.ProfessionalID, "score", rating.Score)
	return &rating, nil
}

// RecomputeScore rewrites a professional's aggregate score from their
// ratings. It must run inside the transaction that changed the ratings; the
// profile row is locked so concurrent recomputes do not interleave.
func (s *RatingService) RecomputeScore(tx *gorm.DB, professionalID uint) error {
	var profile models.ProfessionalProfile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&profile, professionalID).Error
	if database.IsNotFound(err) {
		// Profile removed in the same transaction.
		return nil
	}
	if err != nil {
		return dbError(err, "failed to lock professional profile")
	}

	var agg struct {
		Total int64
		Count int64
	}
	if err := tx.Model(&models.Rating{}).
		Select("COALESCE(SUM(score), 0) AS total, COUNT(*) AS count").
		Where("professional_id = ?", professionalID).
		Scan(&agg).Error; err != nil {
		return dbError(err, "failed to aggregate ratings")
	}

	score := MeanScore(agg.Total, agg.Count)
	if err := tx.Model(&models.ProfessionalProfile{}).Where("id = ?", professionalID).
		Update("score", score).Error; err != nil {
		return dbError(err, "failed to update professional score")
	}
	return nil
}

func (s *RatingService) GetRating(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	if err := s.db.WithContext(ctx).Preload("Client").First(&rating, id).Error; err != nil {
		return nil, notFound(err, "rating not found")
	}
	return &rating, nil
}

func (s *RatingService) ListRatings(ctx context.Context, in ListRatingsInput) (*Paginated[models.Rating], error) {
	query := s.db.WithContext(ctx).Model(&models.Rating{})
	if in.ProfessionalID != 0 {
		query = query.Where("professional_id = ?", in.ProfessionalID)
	}
	page, err := paginate[models.Rating](query, in.PageRequest, "created_at DESC, id DESC", "Client")
	if err != nil {
		return nil, dbError(err, "failed to list ratings")
	}
	return page, nil
}

// RecentRatings returns the newest ratings of a professional.
func (s *RatingService) RecentRatings(ctx context.Context, professionalID uint, limit int) ([]models.Rating, error) {
	ratings := make([]models.Rating, 0, limit)
	if err := s.db.WithContext(ctx).
		Preload("Client").
		Where("professional_id = ?", professionalID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&ratings).Error; err != nil {
		return nil, dbError(err, "failed to load ratings")
	}
	return ratings, nil
}
