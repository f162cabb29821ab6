package services

import (
	"testing"

	"dokan_app_echo/internal/models"
)

func TestSupersededByOrder(t *testing.T) {
	record := func(orderID uint, paymentStatus string) models.TransactionVerification {
		order := models.Order{PaymentStatus: paymentStatus}
		order.ID = orderID
		return models.TransactionVerification{
			OrderID: orderID,
			Status:  models.VerificationStatusPending,
			Order:   order,
		}
	}

	tests := []struct {
		name   string
		record models.TransactionVerification
		want   bool
	}{
		{
			// A failed first attempt leaves a pending row behind; once the
			// retry pays the order, the leftover must not fail it again.
			name:   "paid order supersedes the leftover row",
			record: record(1, models.PaymentStatusPaid),
			want:   true,
		},
		{
			name:   "failed order supersedes the leftover row",
			record: record(2, models.PaymentStatusFailed),
			want:   true,
		},
		{
			name:   "pending order is still owned by the sweep",
			record: record(3, models.PaymentStatusPending),
			want:   false,
		},
		{
			name:   "record without a loaded order stays with the sweep",
			record: models.TransactionVerification{OrderID: 4, Status: models.VerificationStatusPending},
			want:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := supersededByOrder(tc.record); got != tc.want {
				t.Errorf("supersededByOrder = %v, want %v", got, tc.want)
			}
		})
	}
}
