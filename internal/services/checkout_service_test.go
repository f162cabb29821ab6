package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dokan_app_echo/internal/models"
)

type fakeChecker struct {
	found bool
	err   error
	calls int
}

func (f *fakeChecker) CheckTransaction(ctx context.Context, transactionID string) (bool, error) {
	f.calls++
	return f.found, f.err
}

type fakeOrderStore struct {
	createCalls   int
	markPaidCalls int
	advanceCalls  int
	createErr     error
	lastInput     CreateOrderInput
	lastAdvanceGW models.GatewayName
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	f.createCalls++
	f.lastInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &models.Order{OrderNumber: fmt.Sprintf("DKN-%06d", f.createCalls)}
	order.ID = uint(f.createCalls)
	return order, nil
}

func (f *fakeOrderStore) MarkPaid(ctx context.Context, orderID uint) error {
	f.markPaidCalls++
	return nil
}

func (f *fakeOrderStore) RecordAdvance(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string) (*models.AdvancePayment, error) {
	f.advanceCalls++
	f.lastAdvanceGW = gateway
	return &models.AdvancePayment{OrderID: orderID, Amount: CODAdvanceAmount, PaymentGateway: gateway}, nil
}

type fakeVerifier struct {
	verified   bool
	err        error
	calls      int
	lastAmount decimal.Decimal
}

func (f *fakeVerifier) VerifyPayment(ctx context.Context, transactionID string, orderID uint, amount decimal.Decimal) (bool, error) {
	f.calls++
	f.lastAmount = amount
	return f.verified, f.err
}

type fakeReviews struct {
	submitCalls   int
	submitErr     error
	verifiedCalls int
	lastAmount    decimal.Decimal
	lastGateway   models.GatewayName
}

func (f *fakeReviews) SubmitForReview(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string, amount decimal.Decimal) error {
	f.submitCalls++
	f.lastAmount = amount
	f.lastGateway = gateway
	return f.submitErr
}

func (f *fakeReviews) MarkVerified(ctx context.Context, orderID uint, transactionID string) error {
	f.verifiedCalls++
	return nil
}

func bkashGateway() models.PaymentGateway {
	gw := models.PaymentGateway{Name: models.GatewayBkash, DisplayName: "bKash", IsActive: true}
	gw.ID = 1
	return gw
}

func codGateway() models.PaymentGateway {
	gw := models.PaymentGateway{Name: models.GatewayCOD, DisplayName: "Cash on Delivery", IsActive: true}
	gw.ID = 2
	return gw
}

func binanceGateway() models.PaymentGateway {
	gw := models.PaymentGateway{Name: models.GatewayBinancePay, DisplayName: "Binance Pay", IsActive: true, AutoVerify: true}
	gw.ID = 3
	return gw
}

func newTestCheckout(sms *fakeChecker, orders *fakeOrderStore, verifier *fakeVerifier, reviews *fakeReviews) *CheckoutService {
	return NewCheckoutService(sms, orders, verifier, reviews, nil, "8801700000000")
}

func TestSubmitGuardsIncompleteInput(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(750))
	_, err := svc.Submit(context.Background(), attempt, CreateOrderInput{})
	assert.ErrorIs(t, err, ErrNoGatewaySelected)

	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	_, err = svc.Submit(context.Background(), attempt, CreateOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyTransactionID)

	// Rejected before any remote call
	assert.Equal(t, 0, sms.calls)
	assert.Equal(t, 0, orders.createCalls)
}

func TestSMSGatePrecedesOrderCreation(t *testing.T) {
	sms := &fakeChecker{found: false}
	orders := &fakeOrderStore{}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(750))
	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	attempt.TransactionID = "TXN123"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeTransactionNotFound, result.Outcome)
	assert.False(t, result.Outcome.Success())
	assert.Equal(t, 0, orders.createCalls, "order creation must never run when the SMS lookup is negative")
	assert.Equal(t, StateContactSupport, attempt.State)
	assert.Contains(t, result.SupportURL, "TXN123")
}

func TestManualReviewHappyPath(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	reviews := &fakeReviews{}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, reviews)

	attempt := NewPaymentAttempt(decimal.RequireFromString("750.00"))
	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	attempt.TransactionID = "TXN123"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAwaitingReview, result.Outcome)
	assert.True(t, result.Outcome.Success())
	assert.Equal(t, uint(1), result.OrderID)
	assert.Equal(t, 1, reviews.submitCalls)
	assert.True(t, reviews.lastAmount.Equal(decimal.RequireFromString("750.00")))
	assert.Equal(t, models.GatewayBkash, reviews.lastGateway)
	assert.Equal(t, StateAwaitingManualReview, attempt.State)
}

func TestNoDoubleOrderCreation(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	reviews := &fakeReviews{}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, reviews)

	attempt := NewPaymentAttempt(decimal.NewFromInt(500))
	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	attempt.TransactionID = "TXN123"

	_, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, 1, orders.createCalls, "double submission must reuse the cached order")
	assert.Equal(t, 2, reviews.submitCalls, "each submission attempt gets its own audit record")
}

func TestCODAdvanceIsFixed(t *testing.T) {
	for _, total := range []int64{500, 5000} {
		t.Run(fmt.Sprintf("total_%d", total), func(t *testing.T) {
			sms := &fakeChecker{found: true}
			orders := &fakeOrderStore{}
			verifier := &fakeVerifier{}
			reviews := &fakeReviews{}
			svc := newTestCheckout(sms, orders, verifier, reviews)

			attempt := NewPaymentAttempt(decimal.NewFromInt(total))
			require.NoError(t, svc.SelectGateway(attempt, codGateway()))
			attempt.TransactionID = "ADV001"

			result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
			require.NoError(t, err)

			assert.True(t, result.Outcome.Success())
			assert.True(t, reviews.lastAmount.Equal(decimal.NewFromInt(100)), "COD always verifies the fixed advance")
			assert.True(t, result.RemainingBalance.Equal(decimal.NewFromInt(total-100)))
			assert.Equal(t, 1, orders.advanceCalls)
			assert.Equal(t, models.GatewayCOD, orders.lastAdvanceGW)
			assert.Equal(t, 0, verifier.calls)
			assert.True(t, orders.lastInput.AdvancePayment)
		})
	}
}

func TestCODRefusedAtOrBelowAdvance(t *testing.T) {
	svc := newTestCheckout(&fakeChecker{}, &fakeOrderStore{}, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(100))
	err := svc.SelectGateway(attempt, codGateway())
	assert.ErrorIs(t, err, ErrCODBelowAdvance)
	assert.Equal(t, StateSelectingGateway, attempt.State)
}

func TestAutoVerifySuccess(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	verifier := &fakeVerifier{verified: true}
	reviews := &fakeReviews{}
	svc := newTestCheckout(sms, orders, verifier, reviews)

	attempt := NewPaymentAttempt(decimal.RequireFromString("300.00"))
	require.NoError(t, svc.SelectGateway(attempt, binanceGateway()))
	attempt.TransactionID = "BNB999"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSucceeded, result.Outcome)
	assert.Equal(t, 1, verifier.calls)
	assert.True(t, verifier.lastAmount.Equal(decimal.RequireFromString("300.00")))
	assert.Equal(t, 1, orders.markPaidCalls)
	assert.Equal(t, 1, reviews.verifiedCalls)
	assert.Equal(t, StateSucceeded, attempt.State)
}

func TestAutoVerifyFailureRoutesToSupport(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	verifier := &fakeVerifier{verified: false}
	reviews := &fakeReviews{}
	svc := newTestCheckout(sms, orders, verifier, reviews)

	attempt := NewPaymentAttempt(decimal.RequireFromString("300.00"))
	require.NoError(t, svc.SelectGateway(attempt, binanceGateway()))
	attempt.TransactionID = "BNB999"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeVerificationFailed, result.Outcome)
	assert.Equal(t, StateContactSupport, attempt.State)
	assert.Contains(t, result.SupportURL, "BNB999")
	// The order exists and is left pending for manual reconciliation
	assert.Equal(t, 1, orders.createCalls)
	assert.Equal(t, 0, orders.markPaidCalls)
	assert.Equal(t, uint(1), result.OrderID)
}

func TestTerminalSupportLinkIsSticky(t *testing.T) {
	sms := &fakeChecker{found: true}
	verifier := &fakeVerifier{verified: false}
	svc := newTestCheckout(sms, &fakeOrderStore{}, verifier, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(300))
	require.NoError(t, svc.SelectGateway(attempt, binanceGateway()))
	attempt.TransactionID = "BNB999"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	// Re-rendering with the same failed id reproduces the identical link
	assert.Equal(t, result.SupportURL, svc.SupportURL(attempt))
	assert.Equal(t, result.SupportURL, svc.SupportURL(attempt))
}

func TestIdempotentResubmissionAfterVerificationFailure(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{}
	verifier := &fakeVerifier{verified: false}
	reviews := &fakeReviews{}
	svc := newTestCheckout(sms, orders, verifier, reviews)

	attempt := NewPaymentAttempt(decimal.NewFromInt(300))
	require.NoError(t, svc.SelectGateway(attempt, binanceGateway()))
	attempt.TransactionID = "BNB000"

	first, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)
	require.Equal(t, OutcomeVerificationFailed, first.Outcome)

	// User corrects the transaction id and resubmits
	verifier.verified = true
	attempt.TransactionID = "BNB999"

	second, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSucceeded, second.Outcome)
	assert.Equal(t, 1, orders.createCalls, "resubmission must reuse the existing order")
	assert.Equal(t, first.OrderID, second.OrderID)
}

func TestOrderCreationFailureIsTerminal(t *testing.T) {
	sms := &fakeChecker{found: true}
	orders := &fakeOrderStore{createErr: errors.New("otp verification failed")}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(500))
	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	attempt.TransactionID = "TXN777"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeOrderCreationFailed, result.Outcome)
	assert.Equal(t, StateContactSupport, attempt.State)
	assert.Zero(t, result.OrderID, "no order id exists after a creation failure")
	assert.Contains(t, result.SupportURL, "TXN777")
}

func TestSMSLookupErrorIsSafeDefault(t *testing.T) {
	sms := &fakeChecker{err: errors.New("network down")}
	orders := &fakeOrderStore{}
	svc := newTestCheckout(sms, orders, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(500))
	require.NoError(t, svc.SelectGateway(attempt, bkashGateway()))
	attempt.TransactionID = "TXN555"

	result, err := svc.Submit(context.Background(), attempt, CreateOrderInput{Phone: "01712345678"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSubmissionFailed, result.Outcome)
	assert.Equal(t, 0, orders.createCalls)
	assert.NotEmpty(t, result.SupportURL)
}

func TestCancelResetsEnteredState(t *testing.T) {
	sms := &fakeChecker{found: true}
	svc := newTestCheckout(sms, &fakeOrderStore{}, &fakeVerifier{}, &fakeReviews{})

	attempt := NewPaymentAttempt(decimal.NewFromInt(500))
	require.NoError(t, svc.SelectGateway(attempt, codGateway()))
	attempt.TransactionID = "ADV001"
	attempt.FailedTransactionID = "ADV000"

	svc.Cancel(attempt)

	assert.Equal(t, StateSelectingGateway, attempt.State)
	assert.Nil(t, attempt.Gateway)
	assert.Empty(t, attempt.TransactionID)
	assert.Empty(t, attempt.FailedTransactionID)
	assert.False(t, attempt.AdvancePayment)
}

func TestCanReuseOrder(t *testing.T) {
	pending := func(phone string, total string) *models.Order {
		o := &models.Order{
			Phone:         phone,
			PaymentStatus: models.PaymentStatusPending,
			TotalAmount:   decimal.RequireFromString(total),
		}
		o.ID = 42
		return o
	}

	total := decimal.NewFromInt(500)

	t.Run("matching pending order is reusable", func(t *testing.T) {
		assert.NoError(t, CanReuseOrder(pending("01712345678", "500"), "01712345678", total))
	})

	t.Run("order of another phone is refused", func(t *testing.T) {
		err := CanReuseOrder(pending("01799999999", "500"), "01712345678", total)
		assert.ErrorIs(t, err, ErrOrderNotReusable)
	})

	t.Run("settled order is refused", func(t *testing.T) {
		order := pending("01712345678", "500")
		order.PaymentStatus = models.PaymentStatusPaid
		err := CanReuseOrder(order, "01712345678", total)
		assert.ErrorIs(t, err, ErrOrderNotReusable)
	})

	t.Run("total mismatch is refused", func(t *testing.T) {
		err := CanReuseOrder(pending("01712345678", "499"), "01712345678", total)
		assert.ErrorIs(t, err, ErrOrderNotReusable)
	})

	t.Run("missing order is refused", func(t *testing.T) {
		assert.ErrorIs(t, CanReuseOrder(nil, "01712345678", total), ErrOrderNotReusable)
		assert.ErrorIs(t, CanReuseOrder(&models.Order{}, "01712345678", total), ErrOrderNotReusable)
	})
}
