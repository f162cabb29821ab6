package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dokan_app_echo/internal/services"
)

// SMSHandler receives forwarded wallet confirmation messages from the
// SMS-forwarder device. The route sits behind the API-key middleware.
type SMSHandler struct {
	sms *services.SMSService
}

func NewSMSHandler(sms *services.SMSService) *SMSHandler {
	return &SMSHandler{sms: sms}
}

// Ingest parses and stores one forwarded message. Unrecognized messages are
// acknowledged with 200 so the forwarder does not retry them forever.
func (h *SMSHandler) Ingest(c echo.Context) error {
	var req IngestSMSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if strings.TrimSpace(req.Body) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message body is required")
	}

	record, err := h.sms.Ingest(c.Request().Context(), req.Sender, req.Body)
	if err != nil {
		if errors.Is(err, services.ErrUnrecognizedSMS) {
			return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store message")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "stored",
		"transaction_id": record.TransactionID,
		"gateway":        record.Gateway,
	})
}

// Lookup returns the stored message for a transaction id, for admin
// inspection during manual review.
func (h *SMSHandler) Lookup(c echo.Context) error {
	transactionID := c.Param("transaction_id")

	record, err := h.sms.FindByTransactionID(c.Request().Context(), transactionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No message found for this transaction id")
	}
	return c.JSON(http.StatusOK, record)
}
