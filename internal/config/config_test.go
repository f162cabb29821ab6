package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dokan_test")
	t.Setenv("SMS_INGEST_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "BD", cfg.DefaultCountryCode)
	assert.Equal(t, "8801700000000", cfg.SupportWhatsAppPhone)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.MidtransIsProduction)
	assert.Empty(t, cfg.OperatorAlertEmail)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SMS_INGEST_API_KEY", "test-key")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dokan_test")
	t.Setenv("SMS_INGEST_API_KEY", "test-key")
	t.Setenv("DEFAULT_COUNTRY_CODE", "MY")
	t.Setenv("PORT", "9090")
	t.Setenv("MIDTRANS_SERVER_KEY", "SB-Mid-server-test")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("OPERATOR_ALERT_EMAIL", "ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "MY", cfg.DefaultCountryCode)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "SB-Mid-server-test", cfg.MidtransServerKey)
	assert.True(t, cfg.MidtransIsProduction)
	assert.Equal(t, "ops@example.com", cfg.OperatorAlertEmail)
}
