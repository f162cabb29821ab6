package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"dokan_app_echo/internal/models"
)

func TestParseSMS(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		gateway    models.GatewayName
		txnID      string
		amount     string
		sender     string
		wantErr    bool
	}{
		{
			name:    "bkash payment received",
			body:    "You have received Tk 750.00 from 01712345678. Fee Tk 0.00. Balance Tk 1,250.00. TrxID 9HX2K4M7QP at 12/08/2026 14:32",
			gateway: models.GatewayBkash,
			txnID:   "9HX2K4M7QP",
			amount:  "750",
			sender:  "01712345678",
		},
		{
			name:    "bkash amount with thousands separator",
			body:    "You have received Tk 1,500.50 from 01987654321. TrxID AB12CD34EF at 13/08/2026 09:10",
			gateway: models.GatewayBkash,
			txnID:   "AB12CD34EF",
			amount:  "1500.5",
			sender:  "01987654321",
		},
		{
			name:    "nagad payment received",
			body:    "Money Received. Amount: Tk 300.00 Sender: 01512345678 Ref: N/A TxnID: 74XKQZM2 Balance: Tk 420.00",
			gateway: models.GatewayNagad,
			txnID:   "74XKQZM2",
			amount:  "300",
			sender:  "01512345678",
		},
		{
			name:    "rocket payment received",
			body:    "Tk 100.00 received from A/C. Your A/C Balance: Tk 900.00. TxnId: 8812345ROC Date: 14-08-26",
			gateway: models.GatewayRocket,
			txnID:   "8812345ROC",
			amount:  "100",
		},
		{
			name:    "promotional message is rejected",
			body:    "Recharge Tk 50 and get 1GB free! Offer valid till tonight.",
			wantErr: true,
		},
		{
			name:    "empty body is rejected",
			body:    "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSMS(tc.body)
			if tc.wantErr {
				if !errors.Is(err, ErrUnrecognizedSMS) {
					t.Fatalf("expected ErrUnrecognizedSMS, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSMS returned error: %v", err)
			}
			if parsed.Gateway != tc.gateway {
				t.Errorf("gateway = %q, want %q", parsed.Gateway, tc.gateway)
			}
			if parsed.TransactionID != tc.txnID {
				t.Errorf("transaction id = %q, want %q", parsed.TransactionID, tc.txnID)
			}
			want := decimal.RequireFromString(tc.amount)
			if !parsed.Amount.Equal(want) {
				t.Errorf("amount = %s, want %s", parsed.Amount, want)
			}
			if tc.sender != "" && parsed.SenderPhone != tc.sender {
				t.Errorf("sender = %q, want %q", parsed.SenderPhone, tc.sender)
			}
		})
	}
}
