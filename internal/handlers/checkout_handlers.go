package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
	"dokan_app_echo/internal/services"
)

// CheckoutHandler exposes the storefront payment flow: gateway resolution,
// OTP issuance, payment submission and order status.
type CheckoutHandler struct {
	db       *gorm.DB
	gateways *services.GatewayService
	otp      *services.OTPService
	checkout *services.CheckoutService
	orders   *services.OrderService
	hosted   *services.HostedCheckoutService
}

func NewCheckoutHandler(db *gorm.DB, gateways *services.GatewayService, otp *services.OTPService, checkout *services.CheckoutService, orders *services.OrderService, hosted *services.HostedCheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		db:       db,
		gateways: gateways,
		otp:      otp,
		checkout: checkout,
		orders:   orders,
		hosted:   hosted,
	}
}

// ResolveGateways returns the payment methods that can serve the cart:
// country gateways narrowed by product allow-lists, then by order total.
func (h *CheckoutHandler) ResolveGateways(c echo.Context) error {
	var req ResolveGatewaysRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	gateways := h.gateways.ResolveGateways(c.Request().Context(), req.CountryID, req.ProductIDs)

	quantities := make(map[uint]int, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		quantities[id]++
	}
	total, err := h.cartTotal(quantities)
	if err == nil && total.GreaterThan(decimal.Zero) {
		gateways = services.FilterForAmount(gateways, total)
	}

	// nil means "no payment methods", which the storefront renders as an
	// empty state rather than an error
	if gateways == nil {
		gateways = []models.PaymentGateway{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"gateways": gateways,
	})
}

// RequestOTP issues a checkout OTP to the phone over WhatsApp
func (h *CheckoutHandler) RequestOTP(c echo.Context) error {
	var req RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Phone is required")
	}

	if err := h.otp.RequestOTP(c.Request().Context(), req.Phone); err != nil {
		log.Printf("Failed to send OTP to %s: %v", req.Phone, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send verification code")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// Submit runs one payment submission through the verification pipeline. The
// outcome is always 200 with a terminal result; only malformed requests fail.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req CheckoutSubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var gateway models.PaymentGateway
	if err := h.db.Where("id = ? AND is_active = ?", req.GatewayID, true).First(&gateway).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown payment gateway")
	}

	total, err := h.cartTotal(quantitiesByProduct(req.Items))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cart")
	}

	attempt := services.NewPaymentAttempt(total)
	if err := h.checkout.SelectGateway(attempt, gateway); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	attempt.TransactionID = req.TransactionID

	// A resubmission may reuse the order of an earlier failed attempt, but
	// the id arrives from the client: the order must belong to this phone,
	// still be unpaid and match the cart total before it is trusted.
	if req.CreatedOrderID != 0 {
		var prior models.Order
		if err := h.db.First(&prior, req.CreatedOrderID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown order")
		}
		if err := services.CanReuseOrder(&prior, req.Phone, total); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Order does not match this checkout")
		}
		attempt.CreatedOrderID = prior.ID
		attempt.CreatedOrderNumber = prior.OrderNumber
	}

	result, err := h.checkout.Submit(c.Request().Context(), attempt, services.CreateOrderInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		OTPCode:      req.OTPCode,
		Address:      req.Address,
		City:         req.City,
		CountryID:    req.CountryID,
		Items:        req.Items,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := CheckoutSubmitResponse{
		Outcome:            result.Outcome,
		Message:            result.Outcome.Toast(),
		OrderID:            result.OrderID,
		OrderNumber:        result.OrderNumber,
		SupportURL:         result.SupportURL,
		CreatedOrderID:     attempt.CreatedOrderID,
		CreatedOrderNumber: attempt.CreatedOrderNumber,
	}
	if !result.RemainingBalance.IsZero() {
		resp.RemainingBalance = result.RemainingBalance.StringFixed(2)
	}
	return c.JSON(http.StatusOK, resp)
}

// OrderStatus returns an order with its items by public order number
func (h *CheckoutHandler) OrderStatus(c echo.Context) error {
	orderNumber := c.Param("number")

	order, err := h.orders.GetByNumber(c.Request().Context(), orderNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
	}

	return c.JSON(http.StatusOK, order)
}

// InitiateHostedCheckout starts or resumes a hosted payment session for an
// order paid through the redirect gateway.
func (h *CheckoutHandler) InitiateHostedCheckout(c echo.Context) error {
	orderNumber := c.Param("number")

	order, err := h.orders.GetByNumber(c.Request().Context(), orderNumber)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return echo.NewHTTPError(http.StatusBadRequest, "Order is already paid")
	}

	forceNew := c.QueryParam("force_new") == "true"
	callbackURL := getEnv("APP_URL", "http://localhost:8080") + "/orders/" + orderNumber

	result, err := h.hosted.InitiateSession(order, forceNew, callbackURL)
	if err != nil {
		if err.Error() == "payment already made" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Payment is already made. Please check the status."})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to initiate payment: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":        result.Token,
		"redirect_url": result.RedirectURL,
	})
}

// HostedCheckoutCallback handles gateway notifications for hosted sessions.
// Every payload is stored before any processing.
func (h *CheckoutHandler) HostedCheckoutCallback(c echo.Context) error {
	var notificationPayload map[string]interface{}
	if err := c.Bind(&notificationPayload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	raw, _ := json.Marshal(notificationPayload)
	history := models.PaymentCallbackHistory{
		PaymentGateway: models.GatewayMidtransSnap,
		Metadata:       raw,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("Failed to store callback history: %v", err)
	}

	gatewayOrderID, _ := notificationPayload["order_id"].(string)
	transactionStatus, _ := notificationPayload["transaction_status"].(string)
	fraudStatus, _ := notificationPayload["fraud_status"].(string)

	var session models.PaymentSession
	if err := h.db.Where("gateway_order_id = ?", gatewayOrderID).First(&session).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown payment session")
	}

	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			h.settleSession(c, &session)
		}
	case "settlement":
		h.settleSession(c, &session)
	case "deny", "expire", "cancel":
		session.IsActive = false
		h.db.Save(&session)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CheckoutHandler) settleSession(c echo.Context, session *models.PaymentSession) {
	session.IsActive = false
	h.db.Save(session)

	if err := h.orders.MarkPaid(c.Request().Context(), session.OrderID); err != nil {
		log.Printf("Failed to mark order %d paid from callback: %v", session.OrderID, err)
	}
}

func (h *CheckoutHandler) cartTotal(ids map[uint]int) (decimal.Decimal, error) {
	if len(ids) == 0 {
		return decimal.Zero, nil
	}

	productIDs := make([]uint, 0, len(ids))
	for id := range ids {
		productIDs = append(productIDs, id)
	}

	var products []models.Product
	if err := h.db.Where("id IN ? AND is_active = ?", productIDs, true).Find(&products).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range products {
		qty := ids[p.ID]
		if qty < 1 {
			qty = 1
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

func quantitiesByProduct(items []services.OrderItemInput) map[uint]int {
	out := make(map[uint]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}
