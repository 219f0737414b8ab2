package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	Name          string        `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Subcategory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}

// ServiceOffering is a subcategory a professional works in, with a base price.
type ServiceOffering struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ProfessionalID uint            `json:"professional_id" gorm:"not null;uniqueIndex:idx_offering_professional_subcategory"`
	SubcategoryID  uint            `json:"subcategory_id" gorm:"not null;uniqueIndex:idx_offering_professional_subcategory"`
	Subcategory    *Subcategory    `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID;constraint:OnDelete:RESTRICT"`
	Description    string          `json:"description" gorm:"type:text"`
	BasePrice      decimal.Decimal `json:"base_price" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (ServiceOffering) TableName() string {
	return "service_offerings"
}
