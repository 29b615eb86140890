package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database
	DBDriver      string
	DatabaseURL   string
	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	RunMigrations bool

	// Redis (optional: cache, rate limiting and token revocation)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Security
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RateLimit       int
	RateWindow      time.Duration

	// Observability
	SentryDSN   string
	MetricsUser string
	MetricsPass string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Push
	FCMCredentialsFile string
	ReminderInterval   time.Duration

	// Payment
	PaymentProvider     string // "payfast" or "stripe"
	SubscriptionPlans   map[string]float64
	PayFastMerchantID   string
	PayFastMerchantKey  string
	PayFastPassphrase   string
	PayFastReturnURL    string
	PayFastCancelURL    string
	PayFastNotifyURL    string
	PayFastSandbox      bool
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeSuccessURL    string
	StripeCancelURL     string
	StripePriceIDs      map[string]string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envString("APP_ENV", "development")

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Sober"),
		AppEnv:  appEnv,
		Port:    envString("PORT", "8080"),

		// Database
		DBDriver:      envString("DB_DRIVER", "pgx"),
		DatabaseURL:   envString("DATABASE_URL", ""),
		DBUser:        envString("DB_USER", "sober_user"),
		DBPassword:    envString("DB_PASSWORD", "secret"),
		DBHost:        envString("DB_HOST", "localhost"),
		DBPort:        envString("DB_PORT", "5432"),
		DBName:        envString("DB_NAME", "sober_db"),
		RunMigrations: envBool("RUN_MIGRATIONS", true),

		// Redis
		RedisHost:     envString("REDIS_HOST", ""),
		RedisPort:     envString("REDIS_PORT", "6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// Security
		JWTSecret:       envRequired("JWT_SECRET"),
		JWTIssuer:       envString("JWT_ISSUER", "sober-engine"),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		RateLimit:       envInt("RATE_LIMIT", 100),
		RateWindow:      envDuration("RATE_WINDOW", time.Minute),

		// Observability
		SentryDSN:   envString("SENTRY_DSN", ""),
		MetricsUser: envString("METRICS_USER", ""),
		MetricsPass: envString("METRICS_PASS", ""),

		// Email (RESEND_API_KEY optional in development)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Push (optional: without credentials notifications are stored only)
		FCMCredentialsFile: envString("FCM_CREDENTIALS_FILE", "firebase-service-account.json"),
		ReminderInterval:   envDuration("REMINDER_INTERVAL", 24*time.Hour),

		// Payment
		PaymentProvider:     envString("PAYMENT_PROVIDER", "payfast"),
		SubscriptionPlans:   envPlans("SUBSCRIPTION_PLANS", map[string]float64{"monthly": 99}),
		PayFastMerchantID:   envString("PAYFAST_MERCHANT_ID", ""),
		PayFastMerchantKey:  envString("PAYFAST_MERCHANT_KEY", ""),
		PayFastPassphrase:   envString("PAYFAST_PASSPHRASE", ""),
		PayFastReturnURL:    envString("PAYFAST_RETURN_URL", ""),
		PayFastCancelURL:    envString("PAYFAST_CANCEL_URL", ""),
		PayFastNotifyURL:    envString("PAYFAST_NOTIFY_URL", ""),
		PayFastSandbox:      envBool("PAYFAST_SANDBOX", appEnv != "production"),
		StripeSecretKey:     envString("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: envString("STRIPE_WEBHOOK_SECRET", ""),
		StripeSuccessURL:    envString("STRIPE_SUCCESS_URL", ""),
		StripeCancelURL:     envString("STRIPE_CANCEL_URL", ""),
		StripePriceIDs:      envPairs("STRIPE_PRICE_IDS"),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the services that have dev fallbacks are
// really configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development to log reset codes instead of mailing them")
		os.Exit(1)
	}
	if cfg.MetricsUser == "" || cfg.MetricsPass == "" {
		slog.Warn("METRICS_USER/METRICS_PASS not set, /metrics is disabled")
	}
}

// DSN prefers DATABASE_URL and otherwise assembles one from the DB_* keys.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envPairs parses "a:x,b:y" into a map. Malformed pairs are skipped.
func envPairs(key string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(os.Getenv(key), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func envPlans(key string, def map[string]float64) map[string]float64 {
	pairs := envPairs(key)
	if len(pairs) == 0 {
		return def
	}
	plans := make(map[string]float64, len(pairs))
	for id, raw := range pairs {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount <= 0 {
			slog.Warn("config invalid plan amount, skipping", "key", key, "plan", id, "value", raw)
			continue
		}
		plans[id] = amount
	}
	if len(plans) == 0 {
		return def
	}
	return plans
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}
