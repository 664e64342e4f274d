package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string

	ZarinpalMerchantID string
	PaymentCallbackURL string
	DashboardURL       string
	// GatewayCeilingIRR is the largest amount the gateway accepts; larger
	// orders route to the manual finalize-payment flow.
	GatewayCeilingIRR int64

	SMSAPIKey  string
	SMSBaseURL string
	SMSSender  string

	// Default cost percentages applied to every order unless an admin
	// overrides them per order.
	ServicePct        float64
	GuaranteePct      float64
	BusinessProfitPct float64
	ShippingPct       float64

	SweeperSchedule string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ZarinpalMerchantID: os.Getenv("ZARINPAL_MERCHANT_ID"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		DashboardURL:       os.Getenv("DASHBOARD_URL"),
		GatewayCeilingIRR:  envInt64("GATEWAY_CEILING_IRR", 200_000_000),

		SMSAPIKey:  os.Getenv("SMS_API_KEY"),
		SMSBaseURL: os.Getenv("SMS_BASE_URL"),
		SMSSender:  os.Getenv("SMS_SENDER"),

		ServicePct:        envFloat("SERVICE_PERCENTAGE", 9),
		GuaranteePct:      envFloat("GUARANTEE_PERCENTAGE", 5),
		BusinessProfitPct: envFloat("BUSINESS_PROFIT_PERCENTAGE", 10),
		ShippingPct:       envFloat("SHIPPING_PERCENTAGE", 40),

		SweeperSchedule: os.Getenv("SWEEPER_SCHEDULE"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return v
}
