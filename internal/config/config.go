package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

// Config holds all environment-driven settings for the server and worker.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Port        string `env:"PORT" envDefault:"8080"`
	AppURL      string `env:"APP_URL" envDefault:"http://localhost:8080"`
	Env         string `env:"ENV" envDefault:"development"`

	// Store
	DefaultCountryCode string `env:"DEFAULT_COUNTRY_CODE" envDefault:"BD"`

	// WhatsApp bridge (WAHA)
	WahaBaseURL          string `env:"WAHA_BASE_URL" envDefault:"http://waha:3000"`
	WahaAPIKey           string `env:"WAHA_API_KEY"`
	SupportWhatsAppPhone string `env:"SUPPORT_WHATSAPP_PHONE" envDefault:"8801700000000"`

	// SMS ingestion
	SMSIngestAPIKey string `env:"SMS_INGEST_API_KEY,required,notEmpty"`

	// Binance Pay verification
	BinanceBaseURL string `env:"BINANCE_BASE_URL" envDefault:"https://bpay.binanceapi.com"`
	BinanceAPIKey  string `env:"BINANCE_API_KEY"`

	// Midtrans hosted checkout
	MidtransServerKey    string `env:"MIDTRANS_SERVER_KEY"`
	MidtransClientKey    string `env:"MIDTRANS_CLIENT_KEY"`
	MidtransIsProduction bool   `env:"MIDTRANS_IS_PRODUCTION" envDefault:"false"`

	// Reconciliation sweep alerts; empty disables the operator email
	OperatorAlertEmail string `env:"OPERATOR_ALERT_EMAIL"`

	// Firebase admin auth
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH" envDefault:"./firebase-service-account.json"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
