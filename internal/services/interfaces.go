package services

import (
	"context"

	"github.com/shopspring/decimal"

	"dokan_app_echo/internal/models"
)

// Collaborator seams of the checkout orchestrator. Production wiring uses
// SMSService, OrderService, BinancePayService and VerificationService; tests
// substitute fakes.

// TransactionChecker looks a transaction id up in the ingested payment-SMS
// records.
type TransactionChecker interface {
	CheckTransaction(ctx context.Context, transactionID string) (bool, error)
}

// OrderStore creates and settles orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uint) error
	RecordAdvance(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string) (*models.AdvancePayment, error)
}

// AutoVerifier verifies a payment directly against the provider. Only
// defined for gateways with AutoVerify set.
type AutoVerifier interface {
	VerifyPayment(ctx context.Context, transactionID string, orderID uint, amount decimal.Decimal) (bool, error)
}

// ReviewSubmitter records submission attempts for the admin review queue.
type ReviewSubmitter interface {
	SubmitForReview(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string, amount decimal.Decimal) error
	MarkVerified(ctx context.Context, orderID uint, transactionID string) error
}
