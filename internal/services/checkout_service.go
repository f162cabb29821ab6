package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dokan_app_echo/internal/models"
)

// CODAdvanceAmount is the fixed confirmation fee collected online for
// cash-on-delivery orders. The remaining balance is collected at delivery.
var CODAdvanceAmount = decimal.NewFromInt(100)

// PaymentState is the explicit state of a payment attempt. It replaces the
// boolean-flag soup a UI would otherwise accumulate; an attempt is always in
// exactly one state.
type PaymentState string

const (
	StateSelectingGateway      PaymentState = "selecting_gateway"
	StateEnteringTransactionID PaymentState = "entering_transaction_id"
	StateCheckingSMSRecord     PaymentState = "checking_sms_record"
	StateCreatingOrder         PaymentState = "creating_order"
	StateVerifyingPayment      PaymentState = "verifying_payment"
	StateSucceeded             PaymentState = "succeeded"
	StateAwaitingManualReview  PaymentState = "awaiting_manual_review"
	StateContactSupport        PaymentState = "contact_support"
)

// SubmitOutcome is the terminal result reported for one submission
type SubmitOutcome string

const (
	OutcomeSucceeded           SubmitOutcome = "succeeded"             // auto-verified, payment confirmed
	OutcomeAwaitingReview      SubmitOutcome = "awaiting_review"       // accepted, admin confirms asynchronously
	OutcomeTransactionNotFound SubmitOutcome = "transaction_not_found" // id absent from SMS records
	OutcomeOrderCreationFailed SubmitOutcome = "order_creation_failed"
	OutcomeVerificationFailed  SubmitOutcome = "verification_failed" // order exists, stays pending
	OutcomeSubmissionFailed    SubmitOutcome = "submission_failed"   // unexpected error, safe default
)

// Success reports whether the outcome advances the checkout. Manual-review
// acceptance counts: the submission is done, confirmation is asynchronous.
func (o SubmitOutcome) Success() bool {
	return o == OutcomeSucceeded || o == OutcomeAwaitingReview
}

// PaymentAttempt is the session-local record of one in-progress payment. It
// is never persisted; abandoning the flow discards it. CreatedOrderID is the
// idempotency key: once set, retries reuse the order instead of creating a
// second one.
type PaymentAttempt struct {
	State               PaymentState
	Gateway             *models.PaymentGateway
	TransactionID       string
	OrderAmount         decimal.Decimal
	AdvancePayment      bool // true only for COD
	CreatedOrderID      uint
	CreatedOrderNumber  string
	FailedTransactionID string
	submitting          bool
}

// NewPaymentAttempt starts a fresh attempt at gateway selection
func NewPaymentAttempt(orderAmount decimal.Decimal) *PaymentAttempt {
	return &PaymentAttempt{
		State:       StateSelectingGateway,
		OrderAmount: orderAmount,
	}
}

var (
	ErrNoGatewaySelected  = errors.New("no payment gateway selected")
	ErrEmptyTransactionID = errors.New("transaction id is required")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrCODBelowAdvance    = errors.New("order total must exceed the cod advance")
	ErrOrderNotReusable   = errors.New("order cannot be reused for this submission")
)

// CanReuseOrder decides whether a resubmission may attach to an order created
// by an earlier attempt. The order id arrives from the client, so the order
// must be proven to belong to this checkout: same verified phone, still
// unpaid, and the same total the cart prices to now.
func CanReuseOrder(order *models.Order, phone string, total decimal.Decimal) error {
	if order == nil || order.ID == 0 {
		return ErrOrderNotReusable
	}
	if order.Phone != phone {
		return ErrOrderNotReusable
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return ErrOrderNotReusable
	}
	if !order.TotalAmount.Equal(total) {
		return ErrOrderNotReusable
	}
	return nil
}

// SubmitResult is what one submission reports back to the caller
type SubmitResult struct {
	Outcome          SubmitOutcome   `json:"outcome"`
	OrderID          uint            `json:"order_id,omitempty"`
	OrderNumber      string          `json:"order_number,omitempty"`
	RemainingBalance decimal.Decimal `json:"remaining_balance,omitempty"` // COD only, due at delivery
	SupportURL       string          `json:"support_url,omitempty"`
}

// CheckoutService drives a payment attempt end to end: SMS-record gate,
// order creation, gateway-specific verification. Every failure converts to a
// terminal outcome with a support hand-off; nothing propagates to the caller
// as an unhandled error.
type CheckoutService struct {
	sms          TransactionChecker
	orders       OrderStore
	verifier     AutoVerifier
	reviews      ReviewSubmitter
	cache        *RedisCache // optional; guards double submission across requests
	supportPhone string
}

func NewCheckoutService(sms TransactionChecker, orders OrderStore, verifier AutoVerifier, reviews ReviewSubmitter, cache *RedisCache, supportPhone string) *CheckoutService {
	return &CheckoutService{
		sms:          sms,
		orders:       orders,
		verifier:     verifier,
		reviews:      reviews,
		cache:        cache,
		supportPhone: supportPhone,
	}
}

// SelectGateway picks the payment rail for the attempt. Choosing COD flips
// the attempt into the advance-payment sub-flow, where the verified amount is
// the fixed advance rather than the order total. COD is refused outright for
// totals at or below the advance so the delivery balance can never go
// negative.
func (s *CheckoutService) SelectGateway(attempt *PaymentAttempt, gateway models.PaymentGateway) error {
	if gateway.IsCOD() && attempt.OrderAmount.LessThanOrEqual(CODAdvanceAmount) {
		return ErrCODBelowAdvance
	}

	attempt.Gateway = &gateway
	attempt.AdvancePayment = gateway.IsCOD()
	attempt.State = StateEnteringTransactionID
	return nil
}

// Cancel returns the attempt to gateway selection, clearing all entered
// state. The cached order id survives: an order that already exists must not
// be created again by a later submission.
func (s *CheckoutService) Cancel(attempt *PaymentAttempt) {
	attempt.Gateway = nil
	attempt.TransactionID = ""
	attempt.AdvancePayment = false
	attempt.FailedTransactionID = ""
	attempt.State = StateSelectingGateway
}

// Submit runs the verification pipeline for the attempt. Steps are strictly
// ordered: SMS-record check, then order creation, then gateway verification.
// No step is retried automatically; the user resubmits, at which point the
// cached order id keeps the flow idempotent.
func (s *CheckoutService) Submit(ctx context.Context, attempt *PaymentAttempt, order CreateOrderInput) (*SubmitResult, error) {
	if attempt.submitting {
		return nil, ErrSubmissionInFlight
	}
	if attempt.Gateway == nil {
		return nil, ErrNoGatewaySelected
	}
	if strings.TrimSpace(attempt.TransactionID) == "" {
		return nil, ErrEmptyTransactionID
	}

	attempt.submitting = true
	defer func() { attempt.submitting = false }()

	if s.cache != nil {
		lockKey := "checkout:submit:" + order.Phone
		ok, err := s.cache.AcquireLock(ctx, lockKey, 30*time.Second)
		if err == nil {
			if !ok {
				return nil, ErrSubmissionInFlight
			}
			defer s.cache.ReleaseLock(ctx, lockKey)
		}
	}

	// COD verifies the fixed advance, never the order total
	verifyAmount := attempt.OrderAmount
	if attempt.AdvancePayment {
		verifyAmount = CODAdvanceAmount
	}

	// 1. SMS-record gate. Runs strictly before order creation so a bogus
	// transaction id never produces an unpaid order.
	attempt.State = StateCheckingSMSRecord
	found, err := s.sms.CheckTransaction(ctx, attempt.TransactionID)
	if err != nil {
		log.Printf("SMS lookup failed for %q: %v", attempt.TransactionID, err)
		return s.fail(attempt, OutcomeSubmissionFailed), nil
	}
	if !found {
		return s.fail(attempt, OutcomeTransactionNotFound), nil
	}

	// 2. Order creation, at most once per attempt
	if attempt.CreatedOrderID == 0 {
		attempt.State = StateCreatingOrder
		order.PaymentMethod = attempt.Gateway.Name
		order.TransactionID = attempt.TransactionID
		order.AdvancePayment = attempt.AdvancePayment

		created, err := s.orders.CreateOrder(ctx, order)
		if err != nil {
			log.Printf("Order creation failed for %s: %v", order.Phone, err)
			return s.fail(attempt, OutcomeOrderCreationFailed), nil
		}
		attempt.CreatedOrderID = created.ID
		attempt.CreatedOrderNumber = created.OrderNumber
	}

	// 3. Audit record for this submission attempt, regardless of how
	// verification ends.
	attempt.State = StateVerifyingPayment
	if err := s.reviews.SubmitForReview(ctx, attempt.CreatedOrderID, attempt.Gateway.Name, attempt.TransactionID, verifyAmount); err != nil {
		log.Printf("Review submission failed for order %d: %v", attempt.CreatedOrderID, err)
		return s.fail(attempt, OutcomeVerificationFailed), nil
	}

	result := &SubmitResult{
		OrderID:     attempt.CreatedOrderID,
		OrderNumber: attempt.CreatedOrderNumber,
	}
	if attempt.AdvancePayment {
		result.RemainingBalance = attempt.OrderAmount.Sub(CODAdvanceAmount)
	}

	// 4. Gateway-specific verification
	if attempt.Gateway.AutoVerify {
		verified, err := s.verifier.VerifyPayment(ctx, attempt.TransactionID, attempt.CreatedOrderID, verifyAmount)
		if err != nil {
			log.Printf("Auto-verification errored for order %d: %v", attempt.CreatedOrderID, err)
			// The order stays pending for manual reconciliation; it is
			// deliberately not rolled back.
			return s.fail(attempt, OutcomeVerificationFailed), nil
		}
		if !verified {
			return s.fail(attempt, OutcomeVerificationFailed), nil
		}

		if err := s.reviews.MarkVerified(ctx, attempt.CreatedOrderID, attempt.TransactionID); err != nil {
			log.Printf("Failed to close verification record for order %d: %v", attempt.CreatedOrderID, err)
		}
		if err := s.orders.MarkPaid(ctx, attempt.CreatedOrderID); err != nil {
			log.Printf("Failed to mark order %d paid: %v", attempt.CreatedOrderID, err)
		}

		attempt.State = StateSucceeded
		result.Outcome = OutcomeSucceeded
		return result, nil
	}

	// Manual review: submission itself is the success criterion, the payment
	// is confirmed asynchronously by an admin.
	if attempt.AdvancePayment {
		if _, err := s.orders.RecordAdvance(ctx, attempt.CreatedOrderID, attempt.Gateway.Name, attempt.TransactionID); err != nil {
			log.Printf("Failed to record advance for order %d: %v", attempt.CreatedOrderID, err)
		}
	}

	attempt.State = StateAwaitingManualReview
	result.Outcome = OutcomeAwaitingReview
	return result, nil
}

// SupportURL reproduces the support deep link for the attempt's failed
// transaction id. The same failed id always yields an identical link.
func (s *CheckoutService) SupportURL(attempt *PaymentAttempt) string {
	return BuildSupportMessage(s.supportPhone, attempt.FailedTransactionID)
}

func (s *CheckoutService) fail(attempt *PaymentAttempt, outcome SubmitOutcome) *SubmitResult {
	attempt.State = StateContactSupport
	attempt.FailedTransactionID = attempt.TransactionID
	return &SubmitResult{
		Outcome:     outcome,
		OrderID:     attempt.CreatedOrderID,
		OrderNumber: attempt.CreatedOrderNumber,
		SupportURL:  s.SupportURL(attempt),
	}
}

// Toast maps an outcome to the user-facing message shown by the client
func (o SubmitOutcome) Toast() string {
	switch o {
	case OutcomeSucceeded:
		return "Payment Verified"
	case OutcomeAwaitingReview:
		return "Payment Submitted"
	case OutcomeTransactionNotFound:
		return "Transaction Not Found"
	case OutcomeVerificationFailed:
		return "Verification Failed"
	case OutcomeOrderCreationFailed, OutcomeSubmissionFailed:
		return "Submission Failed"
	default:
		return fmt.Sprintf("Unknown outcome: %s", string(o))
	}
}
