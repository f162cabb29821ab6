package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
	"dokan_app_echo/internal/services"
)

// AdminHandler serves the back-office JSON API: dashboard counts, gateway
// and allow-list management, the order list and the manual review queue.
type AdminHandler struct {
	db            *gorm.DB
	cache         *services.RedisCache
	verifications *services.VerificationService
}

func NewAdminHandler(db *gorm.DB, cache *services.RedisCache, verifications *services.VerificationService) *AdminHandler {
	return &AdminHandler{db: db, cache: cache, verifications: verifications}
}

// Dashboard returns the counts shown on the back-office landing page
func (h *AdminHandler) Dashboard(c echo.Context) error {
	var pendingReviews, pendingOrders, paidOrders int64

	h.db.Model(&models.TransactionVerification{}).
		Where("status = ?", models.VerificationStatusPending).Count(&pendingReviews)
	h.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPending).Count(&pendingOrders)
	h.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).Count(&paidOrders)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pending_reviews": pendingReviews,
		"pending_orders":  pendingOrders,
		"paid_orders":     paidOrders,
		"admin_email":     getStringFromContext(c, "userEmail"),
	})
}

// ListGateways returns every gateway of a country, inactive ones included
func (h *AdminHandler) ListGateways(c echo.Context) error {
	query := h.db.Model(&models.PaymentGateway{})
	if countryID := c.QueryParam("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}

	var gateways []models.PaymentGateway
	if err := query.Order("country_id, id").Find(&gateways).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch gateways")
	}
	return c.JSON(http.StatusOK, gateways)
}

// StoreGateway creates a gateway for a country
func (h *AdminHandler) StoreGateway(c echo.Context) error {
	var gateway models.PaymentGateway
	if err := c.Bind(&gateway); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if gateway.Name == "" || gateway.CountryID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and country are required")
	}

	if err := h.db.Create(&gateway).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create gateway")
	}
	return c.JSON(http.StatusCreated, gateway)
}

// UpdateGateway updates display name, activity and auto-verify of a gateway
func (h *AdminHandler) UpdateGateway(c echo.Context) error {
	id := c.Param("id")

	var gateway models.PaymentGateway
	if err := h.db.First(&gateway, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Gateway not found")
	}

	var input models.PaymentGateway
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	gateway.DisplayName = input.DisplayName
	gateway.Instructions = input.Instructions
	gateway.WalletNumber = input.WalletNumber
	gateway.IsActive = input.IsActive
	gateway.AutoVerify = input.AutoVerify

	if err := h.db.Save(&gateway).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update gateway")
	}
	return c.JSON(http.StatusOK, gateway)
}

// UpdateProductGateways replaces a product's payment allow-list. An empty
// list means the product accepts every gateway of its country.
func (h *AdminHandler) UpdateProductGateways(c echo.Context) error {
	id := c.Param("id")

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	var input struct {
		GatewayIDs []uint `json:"gateway_ids"`
	}
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var gateways []models.PaymentGateway
	if len(input.GatewayIDs) > 0 {
		err := h.db.Where("id IN ? AND country_id = ?", input.GatewayIDs, product.CountryID).Find(&gateways).Error
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch gateways")
		}
		if len(gateways) != len(input.GatewayIDs) {
			return echo.NewHTTPError(http.StatusBadRequest, "Allow-list contains a gateway from another country")
		}
	}

	if err := h.db.Model(&product).Association("Gateways").Replace(gateways); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update allow-list")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// ListOrders returns orders, newest first, paginated
func (h *AdminHandler) ListOrders(c echo.Context) error {
	page := parsePage(c)
	pageSize := 20

	query := h.db.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.QueryParam("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count orders")
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * pageSize

	var orders []models.Order
	err := query.Preload("Items").Order("created_at desc").Limit(pageSize).Offset(offset).Find(&orders).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders":       orders,
		"total_count":  totalCount,
		"current_page": page,
		"total_pages":  totalPages,
		"page_size":    pageSize,
	})
}

// ListPendingVerifications returns the manual review queue, oldest first
func (h *AdminHandler) ListPendingVerifications(c echo.Context) error {
	page := parsePage(c)
	pageSize := 20
	offset := (page - 1) * pageSize

	records, totalCount, err := h.verifications.ListPending(c.Request().Context(), pageSize, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch review queue")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"verifications": records,
		"total_count":   totalCount,
		"current_page":  page,
		"page_size":     pageSize,
	})
}

// ApproveVerification settles a pending verification and marks the order paid
func (h *AdminHandler) ApproveVerification(c echo.Context) error {
	return h.decide(c, h.verifications.Approve)
}

// RejectVerification closes a pending verification and fails the order
func (h *AdminHandler) RejectVerification(c echo.Context) error {
	return h.decide(c, h.verifications.Reject)
}

func (h *AdminHandler) decide(c echo.Context, settle func(ctx context.Context, id uint, note string) error) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid verification id")
	}

	var req ReviewDecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	if err := settle(c.Request().Context(), uint(id), req.Note); err != nil {
		if errors.Is(err, services.ErrVerificationClosed) {
			return echo.NewHTTPError(http.StatusConflict, "Verification is already settled")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Verification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to settle verification")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "settled"})
}
