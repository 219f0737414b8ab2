package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"servify-server/apperrors"
	"servify-server/database"
	"servify-server/models"
)

// CatalogService manages categories, subcategories and the offerings
// professionals publish under them.
type CatalogService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewCatalogService(db *gorm.DB, log *zap.SugaredLogger) *CatalogService {
	return &CatalogService{db: db, log: log.Named("catalog")}
}

type AddOfferingInput struct {
	SubcategoryID uint
	Description   string
	BasePrice     decimal.Decimal
}

// requireCategory fails with NotFound unless the category exists. db may be
// an open transaction.
func (s *CatalogService) requireCategory(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return dbError(err, "failed to look up category")
	}
	if count == 0 {
		return apperrors.NotFound("category not found")
	}
	return nil
}

func (s *CatalogService) CategoryExists(ctx context.Context, id uint) (bool, error) {
	err := s.requireCategory(s.db.WithContext(ctx), id)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Subcategory resolves a subcategory reference.
func (s *CatalogService) Subcategory(ctx context.Context, id uint) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := s.db.WithContext(ctx).First(&subcategory, id).Error; err != nil {
		return nil, notFound(err, "subcategory not found")
	}
	return &subcategory, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := s.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, dbError(err, "failed to list categories")
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&category, id).Error; err != nil {
		return nil, notFound(err, "category not found")
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor Actor, name string) (*models.Category, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name is required", "name")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, dbError(err, "failed to check category")
	}
	if count > 0 {
		return nil, apperrors.Conflict("category already exists")
	}

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("category already exists")
		}
		return nil, dbError(err, "failed to create category")
	}
	s.log.Infow("category created", "category_id", category.ID, "name", name)
	return &category, nil
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, actor Actor, categoryID uint, name string) (*models.Subcategory, error) {
	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name is required", "name")
	}

	db := s.db.WithContext(ctx)
	if err := s.requireCategory(db, categoryID); err != nil {
		return nil, err
	}
	subcategory := models.Subcategory{CategoryID: categoryID, Name: name}
	if err := db.Create(&subcategory).Error; err != nil {
		return nil, dbError(err, "failed to create subcategory")
	}
	return &subcategory, nil
}

func (s *CatalogService) ListOfferings(ctx context.Context, actor Actor) ([]models.ServiceOffering, error) {
	if err := actor.requireProfessional("manage offerings"); err != nil {
		return nil, err
	}
	offerings := make([]models.ServiceOffering, 0)
	if err := s.db.WithContext(ctx).
		Preload("Subcategory").
		Where("professional_id = ?", actor.ProfessionalID).
		Order("id ASC").
		Find(&offerings).Error; err != nil {
		return nil, dbError(err, "failed to list offerings")
	}
	return offerings, nil
}

func (s *CatalogService) AddOffering(ctx context.Context, actor Actor, in AddOfferingInput) (*models.ServiceOffering, error) {
	if err := actor.requireProfessional("manage offerings"); err != nil {
		return nil, err
	}
	if in.BasePrice.IsNegative() {
		return nil, apperrors.Validation("base_price cannot be negative", "base_price")
	}

	subcategory, err := s.Subcategory(ctx, in.SubcategoryID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.ServiceOffering{}).
		Where("professional_id = ? AND subcategory_id = ?", actor.ProfessionalID, in.SubcategoryID).
		Count(&count).Error; err != nil {
		return nil, dbError(err, "failed to check offerings")
	}
	if count > 0 {
		return nil, apperrors.Conflict("you already offer this service")
	}

	offering := models.ServiceOffering{
		ProfessionalID: actor.ProfessionalID,
		SubcategoryID:  subcategory.ID,
		Description:    in.Description,
		BasePrice:      in.BasePrice.Round(2),
	}
	if err := db.Create(&offering).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("you already offer this service")
		}
		return nil, dbError(err, "failed to add offering")
	}
	offering.Subcategory = subcategory
	return &offering, nil
}

func (s *CatalogService) RemoveOffering(ctx context.Context, actor Actor, id uint) error {
	if err := actor.requireProfessional("manage offerings"); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)

	var offering models.ServiceOffering
	if err := db.First(&offering, id).Error; err != nil {
		return notFound(err, "offering not found")
	}
	if offering.ProfessionalID != actor.ProfessionalID {
		return apperrors.Forbidden("offering belongs to another professional")
	}
	if err := db.Delete(&offering).Error; err != nil {
		return dbError(err, "failed to remove offering")
	}
	return nil
}
