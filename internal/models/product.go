package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item. Gateways is the per-product payment
// allow-list: an empty list means every gateway of the country is accepted.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string          `gorm:"type:varchar(255)" json:"name"`
	Slug        string          `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(15,2)" json:"price"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	CountryID   uint            `gorm:"index" json:"country_id"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Country  Country          `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Gateways []PaymentGateway `gorm:"many2many:product_gateways;" json:"gateways,omitempty"`
}
