package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Session     SessionConfig
	Redis       RedisConfig
	Billing     BillingConfig
	RateLimit   RateLimitConfig
	Maintenance MaintenanceConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	Location *time.Location
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type BillingConfig struct {
	GSTPercent float64
	Currency   string
}

type RateLimitConfig struct {
	PerMinute int
}

type MaintenanceConfig struct {
	PendingBookingTTL time.Duration
	Interval          time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "library-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL_SECONDS", 30)
	viper.SetDefault("GST_PERCENT", 18)
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("PENDING_BOOKING_TTL_MINUTES", 30)
	viper.SetDefault("CLEANUP_INTERVAL_MINUTES", 10)

	// .env is optional, plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	location, err := time.LoadLocation(viper.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Port:     viper.GetString("PORT"),
			Debug:    viper.GetBool("DEBUG"),
			LogPath:  viper.GetString("LOG_PATH"),
			Location: location,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			TTL:      time.Duration(viper.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		},
		Billing: BillingConfig{
			GSTPercent: viper.GetFloat64("GST_PERCENT"),
			Currency:   viper.GetString("CURRENCY"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Maintenance: MaintenanceConfig{
			PendingBookingTTL: time.Duration(viper.GetInt("PENDING_BOOKING_TTL_MINUTES")) * time.Minute,
			Interval:          time.Duration(viper.GetInt("CLEANUP_INTERVAL_MINUTES")) * time.Minute,
		},
	}

	return config, nil
}
