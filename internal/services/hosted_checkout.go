package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dokan_app_echo/internal/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// HostedCheckoutService manages Midtrans Snap sessions for orders paid
// through the hosted-checkout gateway. Only one session per order may be
// active; a stale or broken session is deactivated before a new one is made.
type HostedCheckoutService struct {
	db             *gorm.DB
	midtransClient *MidtransService
}

func NewHostedCheckoutService(db *gorm.DB, midtransClient *MidtransService) *HostedCheckoutService {
	return &HostedCheckoutService{
		db:             db,
		midtransClient: midtransClient,
	}
}

// CheckActiveSession returns the active session for the order, if any
func (s *HostedCheckoutService) CheckActiveSession(orderID uint) (*models.PaymentSession, error) {
	var existingSession models.PaymentSession
	err := s.db.Where("order_id = ? AND is_active = ?", orderID, true).Order("created_at desc").First(&existingSession).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // No active session
		}
		return nil, err
	}
	return &existingSession, nil
}

// InitiateSessionResult holds the result of an initiation attempt
type InitiateSessionResult struct {
	Token       string
	RedirectURL string
	IsExisting  bool
}

// InitiateSession starts or resumes a hosted payment session for the order
func (s *HostedCheckoutService) InitiateSession(order *models.Order, forceNew bool, callbackURL string) (*InitiateSessionResult, error) {
	// 1. Check for existing active session
	existingSession, err := s.CheckActiveSession(order.ID)
	if err != nil {
		return nil, err
	}

	if existingSession != nil {
		// active session exists, check status with the gateway
		statusResp, err := s.midtransClient.CheckTransaction(existingSession.GatewayOrderID)
		if err == nil {
			// Case 1: Payment already successful
			if statusResp.TransactionStatus == "settlement" || statusResp.TransactionStatus == "capture" {
				return nil, fmt.Errorf("payment already made")
			}

			// Case 2: Payment failed/expired/canceled
			if statusResp.TransactionStatus == "deny" || statusResp.TransactionStatus == "expire" || statusResp.TransactionStatus == "cancel" || statusResp.TransactionStatus == "failure" {
				existingSession.IsActive = false
				s.db.Save(existingSession)
				// Proceed to create new
			} else {
				// Case 3: Payment is pending
				if forceNew {
					s.midtransClient.CancelTransaction(existingSession.GatewayOrderID)
					existingSession.IsActive = false
					s.db.Save(existingSession)
					// Proceed to create new
				} else {
					// Reuse existing
					var midtransResp snap.Response
					if err := json.Unmarshal(existingSession.ResponseMetadata, &midtransResp); err == nil {
						return &InitiateSessionResult{
							Token:       midtransResp.Token,
							RedirectURL: midtransResp.RedirectURL,
							IsExisting:  true,
						}, nil
					}
					// If unmarshal fails, treat as broken
					existingSession.IsActive = false
					s.db.Save(existingSession)
				}
			}
		} else {
			// Check failed, assume session is invalid/broken locally
			existingSession.IsActive = false
			s.db.Save(existingSession)
		}
	}

	// 2. Create new transaction at the gateway
	gatewayOrderID := fmt.Sprintf("order-%d-%d", order.ID, time.Now().Unix())
	grossAmt := order.TotalAmount.Round(0).IntPart()

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  gatewayOrderID,
			GrossAmt: grossAmt,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.CustomerName,
			Phone: order.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("order-%d", order.ID),
				Name:  fmt.Sprintf("Order %s", order.OrderNumber),
				Price: grossAmt,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: callbackURL,
		},
	}

	resp, err := s.midtransClient.CreateTransaction(gatewayOrderID, grossAmt, req)
	if err != nil {
		return nil, err
	}

	// 3. Create session record
	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(resp)

	session := models.PaymentSession{
		OrderID:          order.ID,
		PaymentGateway:   models.GatewayMidtransSnap,
		GatewayOrderID:   gatewayOrderID,
		IsActive:         true,
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	s.db.Create(&session)

	return &InitiateSessionResult{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		IsExisting:  false,
	}, nil
}
