package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdvancePayment records the fixed confirmation fee collected online for a
// cash-on-delivery order. The remaining balance is collected at delivery,
// never online.
type AdvancePayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID        uint            `gorm:"uniqueIndex" json:"order_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentGateway GatewayName     `gorm:"type:varchar(50)" json:"payment_gateway"` // rail used for the advance
	TransactionID  string          `gorm:"type:varchar(100)" json:"transaction_id"`

	Order Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}
