package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
	"dokan_app_echo/internal/services"
)

const defaultReviewWindowHours = 72

// RejectStaleVerificationsTaskDef is the reconciliation sweep: submissions
// that sat in the manual review queue past the window are rejected, their
// orders failed, the customers pointed at support and the operator alerted.
type RejectStaleVerificationsTaskDef struct {
	supportPhone  string
	operatorEmail string
	notify        *SendOrderNotificationTaskDef
}

func NewRejectStaleVerificationsTask(supportPhone, operatorEmail string, notify *SendOrderNotificationTaskDef) *RejectStaleVerificationsTaskDef {
	return &RejectStaleVerificationsTaskDef{
		supportPhone:  supportPhone,
		operatorEmail: operatorEmail,
		notify:        notify,
	}
}

// TaskID returns the unique identifier for this task
func (t *RejectStaleVerificationsTaskDef) TaskID() string {
	return "reject_stale_verifications"
}

// CreateTask builds the recurring sweep. The interval is an RFC 5545 RRULE.
func (t *RejectStaleVerificationsTaskDef) CreateTask(recurringInterval string) (*models.ScheduledTask, error) {
	args := map[string]interface{}{"max_age_hours": defaultReviewWindowHours}
	return BuildScheduledTask(t.TaskID(), args, time.Now(), &recurringInterval, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution runs one sweep over the review queue
func (t *RejectStaleVerificationsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	maxAgeHours := defaultReviewWindowHours
	if v, ok := task.Arguments["max_age_hours"].(float64); ok && v > 0 {
		maxAgeHours = int(v)
	}

	verifications := services.NewVerificationService(db)
	rejected, err := verifications.RejectStale(ctx, time.Duration(maxAgeHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("reconciliation sweep failed: %w", err)
	}

	if len(rejected) == 0 {
		return map[string]interface{}{"status": "success", "rejected": 0}, nil
	}

	t.notifyCustomers(db, rejected)
	t.alertOperator(rejected, maxAgeHours)

	return map[string]interface{}{
		"status":   "success",
		"rejected": len(rejected),
	}, nil
}

// notifyCustomers queues a WhatsApp message with a support link for every
// rejected submission, reusing the notification task's retry machinery.
func (t *RejectStaleVerificationsTaskDef) notifyCustomers(db *gorm.DB, rejected []models.TransactionVerification) {
	for _, record := range rejected {
		if record.Order.Phone == "" {
			continue
		}

		supportURL := services.BuildSupportMessage(t.supportPhone, record.TransactionID)
		template := "Hi $name, we could not verify the payment for order $order_number. " +
			"If you already paid, please contact us here: " + supportURL

		args := SendOrderNotificationArgs{
			Recipients: []NotificationRecipient{{
				OrderID:      record.OrderID,
				OrderNumber:  record.Order.OrderNumber,
				CustomerName: record.Order.CustomerName,
				Phone:        record.Order.Phone,
			}},
			Template: template,
		}

		notifyTask, err := t.notify.CreateTask(args)
		if err != nil {
			log.Printf("Failed to build customer notification for order %d: %v", record.OrderID, err)
			continue
		}
		if err := db.Create(notifyTask).Error; err != nil {
			log.Printf("Failed to queue customer notification for order %d: %v", record.OrderID, err)
		}
	}
}

// alertOperator sends a digest email so expired submissions get a human look
func (t *RejectStaleVerificationsTaskDef) alertOperator(rejected []models.TransactionVerification, maxAgeHours int) {
	if t.operatorEmail == "" {
		return
	}

	var lines []string
	for _, record := range rejected {
		lines = append(lines, fmt.Sprintf("order %s, gateway %s, txn %s, amount %s",
			record.Order.OrderNumber, record.PaymentGateway, record.TransactionID, record.Amount))
	}

	subject := fmt.Sprintf("%d payment submissions expired after %dh", len(rejected), maxAgeHours)
	body := "The following submissions were auto-rejected by the reconciliation sweep:\n\n" +
		strings.Join(lines, "\n")

	if err := services.NewEmailService().SendEmail([]string{t.operatorEmail}, subject, body); err != nil {
		log.Printf("Failed to send operator alert: %v", err)
	}
}
