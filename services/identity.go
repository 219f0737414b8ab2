package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"servify-server/apperrors"
	"servify-server/database"
	"servify-server/models"
	"servify-server/utils"
)

const (
	minPasswordLength    = 6
	publicProfileRatings = 5
)

// IdentityService owns accounts, authentication and professional profiles.
type IdentityService struct {
	db      *gorm.DB
	jwt     *JWTService
	ratings *RatingService
	log     *zap.SugaredLogger
}

func NewIdentityService(db *gorm.DB, jwt *JWTService, ratings *RatingService, log *zap.SugaredLogger) *IdentityService {
	return &IdentityService{db: db, jwt: jwt, ratings: ratings, log: log.Named("identity")}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Phone           string
	Role            models.UserRole
	Bio             string
	ServiceRadiusKm int
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

type UpdateProfileInput struct {
	Bio             *string
	ServiceRadiusKm *int
}

type ListUsersInput struct {
	PageRequest
	Role models.UserRole
}

// Register creates a client or professional account. Professionals get an
// empty profile right away. Admin accounts cannot be self-registered.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.Validation("name is required", "name")
	}
	email, ok := utils.NormalizeEmail(in.Email)
	if !ok {
		return nil, apperrors.Validation("invalid email", "email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.Validation("password must be at least 6 characters", "password")
	}
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if in.Role != models.RoleClient && in.Role != models.RoleProfessional {
		return nil, apperrors.Validation("role must be client or professional", "role")
	}
	if in.ServiceRadiusKm == 0 {
		in.ServiceRadiusKm = models.DefaultServiceRadiusKm
	}
	if in.ServiceRadiusKm < 1 {
		return nil, apperrors.Validation("service_radius_km must be at least 1", "service_radius_km")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return dbError(err, "failed to check email")
		}
		if count > 0 {
			return apperrors.Conflict("email already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("email already registered")
			}
			return dbError(err, "failed to create user")
		}

		if user.IsProfessional() {
			profile := models.ProfessionalProfile{
				UserID:          user.ID,
				Bio:             in.Bio,
				ServiceRadiusKm: in.ServiceRadiusKm,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return dbError(err, "failed to create professional profile")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// Authenticate checks credentials and issues an access token.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, *AccessToken, error) {
	email, _ = utils.NormalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil && !database.IsNotFound(err) {
		return nil, nil, dbError(err, "failed to load user")
	}
	if err != nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwt.GenerateAccessToken(&user)
	if err != nil {
		return nil, nil, apperrors.Internal("failed to issue token", err)
	}
	return &user, token, nil
}

// ResolveActor turns a token subject into an Actor, checking that the
// account still exists.
func (s *IdentityService) ResolveActor(ctx context.Context, userID uint) (Actor, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id", "role").First(&user, userID).Error; err != nil {
		if database.IsNotFound(err) {
			return Actor{}, apperrors.Unauthorized("user associated with token not found")
		}
		return Actor{}, dbError(err, "failed to load user")
	}

	actor := Actor{UserID: user.ID, Role: user.Role}
	if user.IsProfessional() {
		var profile models.ProfessionalProfile
		err := db.Select("id").Where("user_id = ?", user.ID).First(&profile).Error
		if err != nil && !database.IsNotFound(err) {
			return Actor{}, dbError(err, "failed to load professional profile")
		}
		actor.ProfessionalID = profile.ID
	}
	return actor, nil
}

func (s *IdentityService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

func (s *IdentityService) GetUser(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("you can only view your own account")
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

func (s *IdentityService) ListUsers(ctx context.Context, actor Actor, in ListUsersInput) (*Paginated[models.User], error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Model(&models.User{})
	if in.Role != "" {
		query = query.Where("role = ?", in.Role)
	}
	page, err := paginate[models.User](query, in.PageRequest, "id ASC")
	if err != nil {
		return nil, dbError(err, "failed to list users")
	}
	return page, nil
}

func (s *IdentityService) UpdateUser(ctx context.Context, actor Actor, id uint, in UpdateUserInput) (*models.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("you can only edit your own account")
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name cannot be empty", "name")
		}
		changes["name"] = name
	}
	if in.Phone != nil {
		changes["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperrors.Validation("password must be at least 6 characters", "password")
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		changes["password_hash"] = hash
	}
	var email string
	if in.Email != nil {
		var ok bool
		if email, ok = utils.NormalizeEmail(*in.Email); !ok {
			return nil, apperrors.Validation("invalid email", "email")
		}
		changes["email"] = email
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "user not found")
		}
		if in.Email != nil && email != user.Email {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return dbError(err, "failed to check email")
			}
			if count > 0 {
				return apperrors.Conflict("email already registered")
			}
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("email already registered")
			}
			return dbError(err, "failed to update user")
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account and everything that cascades from it. Ratings
// that disappear with a client's solicitations are taken out of the affected
// professionals' scores.
func (s *IdentityService) DeleteUser(ctx context.Context, actor Actor, id uint) error {
	if err := actor.requireAdmin(); err != nil {
		return err
	}
	if actor.UserID == id {
		return apperrors.Validation("you cannot delete your own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "user not found")
		}

		var affected []uint
		if err := tx.Model(&models.Rating{}).
			Distinct().
			Where("solicitation_id IN (?)", tx.Model(&models.Solicitation{}).Select("id").Where("client_id = ?", id)).
			Pluck("professional_id", &affected).Error; err != nil {
			return dbError(err, "failed to collect affected ratings")
		}

		if err := tx.Delete(&user).Error; err != nil {
			return dbError(err, "failed to delete user")
		}

		for _, professionalID := range affected {
			if err := s.ratings.RecomputeScore(tx, professionalID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Infow("user deleted", "user_id", id, "by", actor.UserID)
	return nil
}

func (s *IdentityService) ownProfile(db *gorm.DB, actor Actor) (*models.ProfessionalProfile, error) {
	if err := actor.requireProfessional("manage a profile"); err != nil {
		return nil, err
	}
	var profile models.ProfessionalProfile
	if err := db.Preload("User").
		Preload("Offerings.Subcategory").
		First(&profile, actor.ProfessionalID).Error; err != nil {
		return nil, notFound(err, "professional profile not found")
	}
	return &profile, nil
}

func (s *IdentityService) GetOwnProfile(ctx context.Context, actor Actor) (*models.ProfessionalProfile, error) {
	return s.ownProfile(s.db.WithContext(ctx), actor)
}

func (s *IdentityService) UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (*models.ProfessionalProfile, error) {
	if in.ServiceRadiusKm != nil && *in.ServiceRadiusKm < 1 {
		return nil, apperrors.Validation("service_radius_km must be at least 1", "service_radius_km")
	}
	db := s.db.WithContext(ctx)
	profile, err := s.ownProfile(db, actor)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.Bio != nil {
		changes["bio"] = *in.Bio
	}
	if in.ServiceRadiusKm != nil {
		changes["service_radius_km"] = *in.ServiceRadiusKm
	}
	if len(changes) > 0 {
		if err := db.Model(&models.ProfessionalProfile{}).Where("id = ?", profile.ID).Updates(changes).Error; err != nil {
			return nil, dbError(err, "failed to update profile")
		}
	}
	return s.ownProfile(db, actor)
}

// PublicProfile returns a professional's profile with their latest ratings.
func (s *IdentityService) PublicProfile(ctx context.Context, professionalID uint) (*models.PublicProfile, error) {
	var profile models.ProfessionalProfile
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Offerings.Subcategory").
		First(&profile, professionalID).Error; err != nil {
		return nil, notFound(err, "professional not found")
	}

	recent, err := s.ratings.RecentRatings(ctx, profile.ID, publicProfileRatings)
	if err != nil {
		return nil, err
	}
	return &models.PublicProfile{Profile: profile, RecentRatings: recent}, nil
}
