package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending      = "pending"
	OrderStatusConfirmedCOD = "confirmed_cod" // advance collected, balance due on delivery
	OrderStatusProcessing   = "processing"
	OrderStatusShipped      = "shipped"
	OrderStatusDelivered    = "delivered"
	OrderStatusCancelled    = "cancelled"
	OrderStatusFailed       = "failed"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order is created exactly once per successful checkout submission.
// Creation is OTP-gated; payment_status moves pending -> paid on verification
// or is left pending for manual review.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderNumber   string          `gorm:"type:varchar(40);uniqueIndex" json:"order_number"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	Phone         string          `gorm:"type:varchar(50);index" json:"phone"` // OTP-verified
	Address       string          `gorm:"type:text" json:"address"`
	City          string          `gorm:"type:varchar(100)" json:"city"`
	CountryID     uint            `gorm:"index" json:"country_id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(15,2)" json:"advance_amount"` // zero unless COD
	PaymentMethod GatewayName     `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionID string          `gorm:"type:varchar(100)" json:"transaction_id"` // provider-issued, user-entered
	PaymentStatus string          `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`
	Status        string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// Relationships
	Country       Country                   `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Items         []OrderItem               `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Verifications []TransactionVerification `gorm:"foreignKey:OrderID" json:"verifications,omitempty"`
}

// RemainingBalance is the amount collected at physical delivery for COD orders
func (o Order) RemainingBalance() decimal.Decimal {
	return o.TotalAmount.Sub(o.AdvanceAmount)
}

// OrderItem is a line-item snapshot taken at order creation time
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID     uint            `gorm:"index" json:"order_id"`
	ProductID   uint            `gorm:"index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2)" json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal is unit price times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
