package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration. The cache and the task queue use separate logical DBs.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	// Payments.
	StripeKey              string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret    string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentSignatureSecret string `mapstructure:"PAYMENT_SIGNATURE_SECRET"`
	PaymentCurrency        string `mapstructure:"PAYMENT_CURRENCY"`

	// Deferred reconciliation.
	ReconcileDelay    time.Duration `mapstructure:"RECONCILE_DELAY"`
	ReconcileMaxRetry int           `mapstructure:"RECONCILE_MAX_RETRY"`
	WorkerConcurrency int           `mapstructure:"WORKER_CONCURRENCY"`

	// Scheduling.
	BusinessTimezone          string `mapstructure:"BUSINESS_TIMEZONE"`
	AvailabilityLookAheadDays int    `mapstructure:"AVAILABILITY_LOOKAHEAD_DAYS"`

	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "petcare")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("CATALOG_CACHE_TTL", "10m")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("PAYMENT_SIGNATURE_SECRET", "")
	v.SetDefault("PAYMENT_CURRENCY", "inr")
	v.SetDefault("RECONCILE_DELAY", "5s")
	v.SetDefault("RECONCILE_MAX_RETRY", 0)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("BUSINESS_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("AVAILABILITY_LOOKAHEAD_DAYS", 14)
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "./config/firebase.json")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves BUSINESS_TIMEZONE, falling back to UTC when it is unknown.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
