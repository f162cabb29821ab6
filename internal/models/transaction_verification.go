package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VerificationStatus is the review state of a submitted transaction id
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// TransactionVerification is the audit record of a single submitted
// transaction id. One row is created per submission attempt regardless of
// outcome; status is terminal once verified or rejected.
type TransactionVerification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID        uint               `gorm:"index" json:"order_id"`
	PaymentGateway GatewayName        `gorm:"type:varchar(50)" json:"payment_gateway"`
	TransactionID  string             `gorm:"type:varchar(100);index" json:"transaction_id"`
	Amount         decimal.Decimal    `gorm:"type:decimal(15,2)" json:"amount"`
	Status         VerificationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	VerifiedAt     *time.Time         `json:"verified_at"`
	Note           string             `gorm:"type:text" json:"note"` // reviewer remark or rejection reason

	Order Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// IsTerminal reports whether the verification can no longer change
func (v TransactionVerification) IsTerminal() bool {
	return v.Status == VerificationStatusVerified || v.Status == VerificationStatusRejected
}
