package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Mongo configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthDB    int    `mapstructure:"REDIS_AUTH_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Auth.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Payment gateway.
	StripeKey            string `mapstructure:"STRIPE_KEY"`
	PaymentSigningSecret string `mapstructure:"PAYMENT_SIGNING_SECRET"`
	PaymentCurrency      string `mapstructure:"PAYMENT_CURRENCY"`

	// Real-time session provider.
	RTCAppID            string `mapstructure:"RTC_APP_ID"`
	RTCAppSecret        string `mapstructure:"RTC_APP_SECRET"`
	SessionTokenTTLMin  int    `mapstructure:"SESSION_TOKEN_TTL_MIN"`
	SessionJoinLeadMin  int    `mapstructure:"SESSION_JOIN_LEAD_MIN"`
	SessionJoinGraceMin int    `mapstructure:"SESSION_JOIN_GRACE_MIN"`

	// Firebase (push notifications).
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`

	// Reminder lead time before a booking starts, in minutes.
	ReminderLeadMin int `mapstructure:"REMINDER_LEAD_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "stylora")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_SESSION_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("PAYMENT_CURRENCY", "inr")
	viper.SetDefault("SESSION_TOKEN_TTL_MIN", 60)
	viper.SetDefault("SESSION_JOIN_LEAD_MIN", 15)
	viper.SetDefault("SESSION_JOIN_GRACE_MIN", 30)
	viper.SetDefault("REMINDER_LEAD_MIN", 60)
	viper.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "serviceAccountKey.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
