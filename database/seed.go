package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"servify-server/models"
)

type seedCategory struct {
	name          string
	subcategories []string
}

var defaultCategories = []seedCategory{
	{"Limpeza", []string{"Residencial", "Comercial", "Pós-obra"}},
	{"Hidráulica", []string{"Vazamentos", "Instalação de torneiras", "Desentupimento"}},
	{"Elétrica", []string{"Instalação", "Reparos", "Quadro de distribuição"}},
	{"Pintura", []string{"Interna", "Externa"}},
	{"Climatização", []string{"Instalação de ar-condicionado", "Manutenção"}},
	{"Marcenaria", []string{"Móveis sob medida", "Reparos"}},
	{"Eletrodomésticos", []string{"Geladeira", "Máquina de lavar"}},
}

// SeedCatalog inserts the default categories and subcategories that are not
// there yet. Existing rows are left untouched.
func SeedCatalog(db *gorm.DB, log *zap.SugaredLogger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range defaultCategories {
			var category models.Category
			err := tx.Where("name = ?", seed.name).First(&category).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up category %s: %w", seed.name, err)
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category = models.Category{Name: seed.name}
				if err := tx.Create(&category).Error; err != nil {
					return fmt.Errorf("failed to create category %s: %w", seed.name, err)
				}
				log.Infow("seeded category", "name", seed.name)
			}

			for _, name := range seed.subcategories {
				var count int64
				if err := tx.Model(&models.Subcategory{}).
					Where("category_id = ? AND name = ?", category.ID, name).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				if err := tx.Create(&models.Subcategory{CategoryID: category.ID, Name: name}).Error; err != nil {
					return fmt.Errorf("failed to create subcategory %s: %w", name, err)
				}
			}
		}
		return nil
	})
}
