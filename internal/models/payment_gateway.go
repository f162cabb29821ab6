package models

import (
	"time"

	"gorm.io/gorm"
)

// GatewayName is the machine key of a payment rail
type GatewayName string

const (
	GatewayBkash        GatewayName = "bkash"
	GatewayNagad        GatewayName = "nagad"
	GatewayRocket       GatewayName = "rocket"
	GatewayCOD          GatewayName = "cod"
	GatewayBinancePay   GatewayName = "binance_pay"
	GatewayMidtransSnap GatewayName = "midtrans_snap"
)

// PaymentGateway represents one configured payment rail for a country.
// Name is unique within a country; inactive gateways are never offered to payers.
type PaymentGateway struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         GatewayName `gorm:"type:varchar(50);uniqueIndex:idx_gateway_name_country" json:"name"`
	CountryID    uint        `gorm:"uniqueIndex:idx_gateway_name_country;index" json:"country_id"`
	DisplayName  string      `gorm:"type:varchar(100)" json:"display_name"`
	WalletNumber string      `gorm:"type:varchar(50)" json:"wallet_number"`
	Instructions string      `gorm:"type:text" json:"instructions"` // free text shown to the payer
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	AutoVerify   bool        `gorm:"default:false" json:"auto_verify"` // supports automatic verification (binance_pay)

	Country Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

// IsCOD reports whether this gateway is the cash-on-delivery rail
func (g PaymentGateway) IsCOD() bool {
	return g.Name == GatewayCOD
}

// IsHosted reports whether payment runs through a hosted checkout session
// instead of manual transaction-id entry
func (g PaymentGateway) IsHosted() bool {
	return g.Name == GatewayMidtransSnap
}
