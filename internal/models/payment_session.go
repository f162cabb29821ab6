package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentSession tracks one hosted-checkout attempt (Midtrans Snap) for an
// order. At most one session per order is active at a time; the raw gateway
// request/response are kept for reconciliation.
type PaymentSession struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"index" json:"order_id"`
	PaymentGateway   GatewayName     `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	GatewayOrderID   string          `gorm:"type:varchar(100);index" json:"gateway_order_id"` // id sent to the gateway
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	Order Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}
