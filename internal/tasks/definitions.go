package tasks

import (
	"dokan_app_echo/internal/config"
	"dokan_app_echo/internal/services"
)

// DefineTasks builds every task with its dependencies from the configuration
// and registers the handlers.
func DefineTasks(cfg *config.Config) {
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	waha := services.NewWahaService(cfg.WahaBaseURL, cfg.WahaAPIKey)
	notify := NewSendOrderNotificationTask(waha)
	RegisterHandler(notify.TaskID(), notify.HandleExecution)

	sweep := NewRejectStaleVerificationsTask(cfg.SupportWhatsAppPhone, cfg.OperatorAlertEmail, notify)
	RegisterHandler(sweep.TaskID(), sweep.HandleExecution)
}
