package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dokan_app_echo/internal/models"
)

func TestBuildScheduledTask(t *testing.T) {
	due := time.Now().Add(time.Hour)

	args := SendOrderNotificationArgs{
		Recipients: []NotificationRecipient{{OrderID: 7, OrderNumber: "DKN-000007", Phone: "8801712345678"}},
		Template:   "Hi $name",
	}

	task, err := BuildScheduledTask("send_order_notification", args, due, nil, models.ScheduledTaskTypeOneTime, 3)
	require.NoError(t, err)

	assert.Equal(t, "send_order_notification", task.TaskName)
	assert.Equal(t, models.ScheduledTaskStatusActive, task.Status)
	assert.Equal(t, 3, task.MaxAttempt)

	// Arguments are stored as a generic map so the worker can persist them
	// and the handler can unmarshal them back into its own struct
	recipients, ok := task.Arguments["recipients"].([]interface{})
	require.True(t, ok)
	assert.Len(t, recipients, 1)
}

func TestBuildScheduledTaskClampsMaxAttempt(t *testing.T) {
	for _, maxAttempt := range []int{0, -1} {
		task, err := BuildScheduledTask("log_info", map[string]interface{}{}, time.Now(), nil, models.ScheduledTaskTypeOneTime, maxAttempt)
		require.NoError(t, err)
		assert.Equal(t, 1, task.MaxAttempt, "a task must always get at least one attempt")
	}
}
