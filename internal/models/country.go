package models

import (
	"time"

	"gorm.io/gorm"
)

// Country represents a storefront country with its own currency and gateways
type Country struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string `gorm:"type:varchar(100)" json:"name"`
	Code         string `gorm:"type:varchar(2);uniqueIndex" json:"code"` // ISO 3166-1 alpha-2
	CurrencyCode string `gorm:"type:varchar(3)" json:"currency_code"`
	PhonePrefix  string `gorm:"type:varchar(5)" json:"phone_prefix"` // e.g. "880"
	IsDefault    bool   `gorm:"default:false" json:"is_default"`     // fallback when geolocation is missing
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Gateways []PaymentGateway `gorm:"foreignKey:CountryID" json:"gateways,omitempty"`
	Products []Product        `gorm:"foreignKey:CountryID" json:"products,omitempty"`
}
