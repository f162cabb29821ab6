package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SMSTransaction is an ingested payment-confirmation SMS. The checkout flow
// looks transaction ids up here before trusting a user-entered id.
type SMSTransaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TransactionID string          `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id"`
	Gateway       GatewayName     `gorm:"type:varchar(50)" json:"gateway"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Sender        string          `gorm:"type:varchar(50)" json:"sender"` // wallet number the money came from
	RawMessage    string          `gorm:"type:text" json:"raw_message"`
	ReceivedAt    time.Time       `json:"received_at"`
}
