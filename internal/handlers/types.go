package handlers

import (
	"os"
	"strconv"

	"github.com/labstack/echo/v4"

	"dokan_app_echo/internal/services"
)

// ResolveGatewaysRequest asks which payment methods can serve a cart
type ResolveGatewaysRequest struct {
	CountryID  uint   `json:"country_id"`
	ProductIDs []uint `json:"product_ids"`
}

// RequestOTPRequest asks for a checkout OTP on the given phone
type RequestOTPRequest struct {
	Phone string `json:"phone"`
}

// CheckoutSubmitRequest is one payment submission. CreatedOrderID carries the
// order id from a previous failed attempt so resubmission never creates a
// second order; the server re-validates it against the phone and cart total
// before reusing it.
type CheckoutSubmitRequest struct {
	GatewayID      uint   `json:"gateway_id"`
	TransactionID  string `json:"transaction_id"`
	CreatedOrderID uint   `json:"created_order_id,omitempty"`

	CustomerName string                      `json:"customer_name"`
	Phone        string                      `json:"phone"`
	OTPCode      string                      `json:"otp_code"`
	Address      string                      `json:"address"`
	City         string                      `json:"city"`
	CountryID    uint                        `json:"country_id"`
	Items        []services.OrderItemInput   `json:"items"`
}

// CheckoutSubmitResponse reports the terminal outcome of one submission
type CheckoutSubmitResponse struct {
	Outcome            services.SubmitOutcome `json:"outcome"`
	Message            string                 `json:"message"`
	OrderID            uint                   `json:"order_id,omitempty"`
	OrderNumber        string                 `json:"order_number,omitempty"`
	RemainingBalance   string                 `json:"remaining_balance,omitempty"`
	SupportURL         string                 `json:"support_url,omitempty"`
	CreatedOrderID     uint                   `json:"created_order_id,omitempty"`
	CreatedOrderNumber string                 `json:"created_order_number,omitempty"`
}

// IngestSMSRequest is one forwarded wallet confirmation message
type IngestSMSRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// ReviewDecisionRequest settles a pending verification
type ReviewDecisionRequest struct {
	Note string `json:"note"`
}

// Helper to get string values from echo context
func getStringFromContext(c echo.Context, key string) string {
	if val := c.Get(key); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// getEnv reads an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parsePage reads the page query param, defaulting to the first page
func parsePage(c echo.Context) int {
	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	return page
}
