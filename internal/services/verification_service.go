package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
)

// ErrVerificationClosed is returned when an already-verified or rejected
// record is acted on again; those statuses are terminal.
var ErrVerificationClosed = errors.New("verification is already closed")

// VerificationService owns the TransactionVerification audit/review records:
// one per submission attempt, pending until an automatic check or an admin
// settles it.
type VerificationService struct {
	db *gorm.DB
}

func NewVerificationService(db *gorm.DB) *VerificationService {
	return &VerificationService{db: db}
}

// SubmitForReview records a submission attempt. Called for every attempt
// that produced an order, so the queue doubles as the audit trail.
func (s *VerificationService) SubmitForReview(ctx context.Context, orderID uint, gateway models.GatewayName, transactionID string, amount decimal.Decimal) error {
	record := models.TransactionVerification{
		OrderID:        orderID,
		PaymentGateway: gateway,
		TransactionID:  transactionID,
		Amount:         amount,
		Status:         models.VerificationStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create verification record: %w", err)
	}
	return nil
}

// MarkVerified closes the pending record for the order after an automatic
// check succeeded.
func (s *VerificationService) MarkVerified(ctx context.Context, orderID uint, transactionID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.TransactionVerification{}).
		Where("order_id = ? AND transaction_id = ? AND status = ?", orderID, transactionID, models.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":      models.VerificationStatusVerified,
			"verified_at": &now,
		}).Error
}

// Approve settles a pending verification and marks the order paid
func (s *VerificationService) Approve(ctx context.Context, id uint, note string) error {
	return s.settle(ctx, id, models.VerificationStatusVerified, note)
}

// Reject closes a pending verification and flags the order as failed
func (s *VerificationService) Reject(ctx context.Context, id uint, note string) error {
	return s.settle(ctx, id, models.VerificationStatusRejected, note)
}

func (s *VerificationService) settle(ctx context.Context, id uint, status models.VerificationStatus, note string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.TransactionVerification
		if err := tx.First(&record, id).Error; err != nil {
			return fmt.Errorf("failed to fetch verification: %w", err)
		}
		if record.IsTerminal() {
			return ErrVerificationClosed
		}

		now := time.Now()
		record.Status = status
		record.VerifiedAt = &now
		record.Note = note
		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update verification: %w", err)
		}

		if status == models.VerificationStatusRejected {
			// Every submission attempt has its own record, so a stale row can
			// outlive a retry that already paid the order. A rejection only
			// fails orders that are still unpaid.
			return tx.Model(&models.Order{}).
				Where("id = ? AND payment_status = ?", record.OrderID, models.PaymentStatusPending).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentStatusFailed,
					"status":         models.OrderStatusFailed,
				}).Error
		}
		return tx.Model(&models.Order{}).Where("id = ?", record.OrderID).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"status":         models.OrderStatusProcessing,
			}).Error
	})
}

// ListPending returns the manual review queue, oldest first
func (s *VerificationService) ListPending(ctx context.Context, limit, offset int) ([]models.TransactionVerification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.TransactionVerification{}).
		Where("status = ?", models.VerificationStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.TransactionVerification
	err := query.Preload("Order").Order("created_at asc").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// RejectStale closes verifications that sat pending longer than maxAge and
// fails their orders. Returns the affected records so callers can notify.
func (s *VerificationService) RejectStale(ctx context.Context, maxAge time.Duration) ([]models.TransactionVerification, error) {
	cutoff := time.Now().Add(-maxAge)

	var stale []models.TransactionVerification
	err := s.db.WithContext(ctx).Preload("Order").
		Where("status = ? AND created_at < ?", models.VerificationStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale verifications: %w", err)
	}

	rejected := make([]models.TransactionVerification, 0, len(stale))
	for _, record := range stale {
		if supersededByOrder(record) {
			if err := s.closeSuperseded(ctx, record.ID); err != nil {
				return rejected, err
			}
			continue
		}

		if err := s.Reject(ctx, record.ID, "expired: no review within the reconciliation window"); err != nil {
			// Keep sweeping; an already-settled record is not an error worth stopping for
			if !errors.Is(err, ErrVerificationClosed) {
				return rejected, err
			}
			continue
		}
		rejected = append(rejected, record)
	}
	return rejected, nil
}

// supersededByOrder reports whether a pending verification is a leftover of
// an earlier attempt: the order has already left payment_status=pending, so
// the record no longer controls the order's fate and must not fail it or
// trigger a customer notification.
func supersededByOrder(record models.TransactionVerification) bool {
	return record.Order.ID != 0 && record.Order.PaymentStatus != models.PaymentStatusPending
}

// closeSuperseded settles the leftover record without touching its order
func (s *VerificationService) closeSuperseded(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.TransactionVerification{}).
		Where("id = ? AND status = ?", id, models.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":      models.VerificationStatusRejected,
			"verified_at": &now,
			"note":        "superseded: a later attempt settled the order",
		}).Error
}
