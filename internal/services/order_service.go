package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
)

var (
	// ErrOTPInvalid is returned when the checkout OTP does not match
	ErrOTPInvalid = errors.New("otp verification failed")
	// ErrEmptyCart is returned when an order is submitted without items
	ErrEmptyCart = errors.New("order has no items")
)

// OrderItemInput is one cart line item at submission time
type OrderItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput carries everything needed to create an order. OTPCode is
// checked against the code issued for Phone unless OTPVerified asserts the
// phone was already verified earlier in checkout.
type CreateOrderInput struct {
	CustomerName   string             `json:"customer_name"`
	Phone          string             `json:"phone"`
	OTPCode        string             `json:"otp_code"`
	OTPVerified    bool               `json:"otp_verified"`
	Address        string             `json:"address"`
	City           string             `json:"city"`
	CountryID      uint               `json:"country_id"`
	PaymentMethod  models.GatewayName `json:"payment_method"`
	TransactionID  string             `json:"transaction_id"`
	AdvancePayment bool               `json:"advance_payment"`
	Items          []OrderItemInput   `json:"items"`
}

// OrderService creates and settles orders. Creation is OTP-gated and runs in
// a single database transaction so a half-written order never survives.
type OrderService struct {
	db  *gorm.DB
	otp *OTPService
}

func NewOrderService(db *gorm.DB, otp *OTPService) *OrderService {
	return &OrderService{db: db, otp: otp}
}

// CreateOrder verifies the OTP gate and persists the order with its line-item
// snapshot. The total is computed server-side from current product prices.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if !input.OTPVerified {
		ok, err := s.otp.VerifyOTP(ctx, input.Phone, input.OTPCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOTPInvalid, err)
		}
		if !ok {
			return nil, ErrOTPInvalid
		}
	}

	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.ProductID)
		}

		var products []models.Product
		if err := tx.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
			return fmt.Errorf("failed to fetch products: %w", err)
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return fmt.Errorf("product %d not available", item.ProductID)
			}
			if item.Quantity <= 0 {
				return fmt.Errorf("invalid quantity for product %d", item.ProductID)
			}
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		advance := decimal.Zero
		if input.AdvancePayment {
			advance = CODAdvanceAmount
		}

		order = models.Order{
			OrderNumber:   newOrderNumber(),
			CustomerName:  input.CustomerName,
			Phone:         input.Phone,
			Address:       input.Address,
			City:          input.City,
			CountryID:     input.CountryID,
			TotalAmount:   total,
			AdvanceAmount: advance,
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
			PaymentStatus: models.PaymentStatusPending,
			Status:        models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// MarkPaid settles the order after a successful verification
func (s *OrderService) MarkPaid(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.OrderStatusProcessing,
		}).Error
}

// MarkFailed flags the order after a rejected or expired verification
func (s *OrderService) MarkFailed(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusFailed,
			"status":         models.OrderStatusFailed,
		}).Error
}

// RecordAdvance stores the fixed COD confirmation fee for the order and moves
// the order into confirmed-pending-delivery.
func (s *OrderService) RecordAdvance(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string) (*models.AdvancePayment, error) {
	advance := models.AdvancePayment{
		OrderID:        orderID,
		Amount:         CODAdvanceAmount,
		PaymentGateway: gateway,
		TransactionID:  transactionID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&advance).Error; err != nil {
			return fmt.Errorf("failed to create advance payment: %w", err)
		}
		return tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", models.OrderStatusConfirmedCOD).Error
	})
	if err != nil {
		return nil, err
	}
	return &advance, nil
}

// GetByNumber fetches an order with its items by public order number
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func newOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "DKN-" + strings.ToUpper(raw[:12])
}
