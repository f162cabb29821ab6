package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// BinancePayService checks submitted Binance Pay transaction ids against the
// provider. It is the only gateway with automatic verification; every other
// rail goes to the manual review queue.
type BinancePayService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewBinancePayService(baseURL, apiKey string) *BinancePayService {
	if baseURL == "" {
		baseURL = "https://bpay.binanceapi.com"
	}
	return &BinancePayService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type binanceVerifyRequest struct {
	TransactionID string `json:"transaction_id"`
	MerchantRef   string `json:"merchant_ref"`
	Amount        string `json:"amount"`
}

type binanceVerifyResponse struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
}

// VerifyPayment asks the provider whether the transaction id settled for the
// given order and amount. A false return with nil error means the provider
// answered but did not recognize the payment.
func (s *BinancePayService) VerifyPayment(ctx context.Context, transactionID string, orderID uint, amount decimal.Decimal) (bool, error) {
	payload := binanceVerifyRequest{
		TransactionID: transactionID,
		MerchantRef:   fmt.Sprintf("order-%d", orderID),
		Amount:        amount.StringFixed(2),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/binancepay/openapi/v2/query", bytes.NewBuffer(data))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("BinancePay-Certificate-SN", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("verification request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result binanceVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Verified, nil
}
