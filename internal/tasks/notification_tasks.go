package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
	"dokan_app_echo/internal/services"
)

// NotificationRecipient is one customer in the notification payload
type NotificationRecipient struct {
	OrderID      uint   `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
}

// SendOrderNotificationArgs defines the arguments for an order notification task
type SendOrderNotificationArgs struct {
	Recipients   []NotificationRecipient `json:"recipients"`
	Template     string                  `json:"template"`
	AttemptCount int                     `json:"attempt_count"`
}

// SendOrderNotificationTaskDef delivers order updates to customers over
// WhatsApp. Delivery failures are collected and rescheduled until the task's
// attempt budget runs out.
type SendOrderNotificationTaskDef struct {
	waha *services.WahaService
}

func NewSendOrderNotificationTask(waha *services.WahaService) *SendOrderNotificationTaskDef {
	return &SendOrderNotificationTaskDef{waha: waha}
}

// TaskID returns the unique identifier for this task
func (t *SendOrderNotificationTaskDef) TaskID() string {
	return "send_order_notification"
}

// CreateTask builds a ScheduledTask record for this task
func (t *SendOrderNotificationTaskDef) CreateTask(args SendOrderNotificationArgs) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution sends the message to every recipient and reschedules failures
func (t *SendOrderNotificationTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var parsedArgs SendOrderNotificationArgs
	if err := json.Unmarshal(argsBytes, &parsedArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	if parsedArgs.Template == "" {
		return nil, fmt.Errorf("template is missing")
	}

	total := len(parsedArgs.Recipients)
	successCount := 0
	var failures []string
	var failedRecipients []NotificationRecipient

	for _, recipient := range parsedArgs.Recipients {
		if recipient.Phone == "" {
			log.Printf("Skipping notification for order %s: no phone", recipient.OrderNumber)
			continue
		}

		msg := replacePlaceholders(parsedArgs.Template, recipient)
		if err := t.waha.SendMessage(recipient.Phone, msg); err != nil {
			log.Printf("Failed to notify %s for order %s: %v", recipient.Phone, recipient.OrderNumber, err)
			failures = append(failures, fmt.Sprintf("%s: %v", recipient.OrderNumber, err))
			failedRecipients = append(failedRecipients, recipient)
		} else {
			successCount++
		}
	}

	result := map[string]interface{}{
		"total":   total,
		"success": successCount,
		"failure": len(failedRecipients),
	}

	if len(failedRecipients) > 0 {
		result["errors"] = failures

		attempt := parsedArgs.AttemptCount
		maxRetries := task.MaxAttempt

		if attempt < maxRetries {
			log.Printf("Partial failure: %d recipients failed. Rescheduling for attempt %d", len(failedRecipients), attempt+1)

			newArgs := parsedArgs
			newArgs.Recipients = failedRecipients
			newArgs.AttemptCount = attempt + 1

			// Re-schedule in 5 minutes
			nextRun := time.Now().Add(5 * time.Minute)

			newTask, err := BuildScheduledTask(t.TaskID(), newArgs, nextRun, nil, models.ScheduledTaskTypeOneTime, maxRetries)
			if err == nil {
				db.Create(newTask)
			} else {
				log.Printf("Failed to create retry task: %v", err)
			}
		} else {
			log.Printf("Max attempts (%d) reached for %d failed recipients.", maxRetries, len(failedRecipients))
			return result, fmt.Errorf("max attempts reached, failed to deliver to %d recipients", len(failedRecipients))
		}
	}

	return result, nil
}

func replacePlaceholders(template string, recipient NotificationRecipient) string {
	res := strings.ReplaceAll(template, "$name", recipient.CustomerName)
	res = strings.ReplaceAll(res, "$order_number", recipient.OrderNumber)
	return res
}
