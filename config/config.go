package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Booking   BookingConfig
	Slots     SlotConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
}

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrateOnStart bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig only verifies tokens; issuance belongs to the identity service.
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BookingConfig holds the time-based booking rules.
type BookingConfig struct {
	LeadTime     time.Duration
	CancelCutoff time.Duration
	MaxActive    int
}

type SlotConfig struct {
	Quantum     time.Duration
	HorizonDays int
	Limit       int
	CacheTTL    time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	// TrustedProxies lists the addresses or CIDRs of the load balancers whose
	// X-Forwarded-For is believed. Empty means the peer address is used as is.
	TrustedProxies []string
}

// Location resolves the server-local zone all calendar arithmetic runs in.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Local")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MIGRATE_ON_START", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	v.SetDefault("BOOKING_LEAD_TIME", "2h")
	v.SetDefault("BOOKING_CANCEL_CUTOFF", "2h")
	v.SetDefault("BOOKING_MAX_ACTIVE", 10)

	v.SetDefault("SLOT_QUANTUM", "30m")
	v.SetDefault("SLOT_HORIZON_DAYS", 14)
	v.SetDefault("SLOT_LIMIT", 200)
	v.SetDefault("SLOT_CACHE_TTL", "1m")

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
}

// LoadConfig reads .env when present and lets the environment override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Booking: BookingConfig{
			LeadTime:     v.GetDuration("BOOKING_LEAD_TIME"),
			CancelCutoff: v.GetDuration("BOOKING_CANCEL_CUTOFF"),
			MaxActive:    v.GetInt("BOOKING_MAX_ACTIVE"),
		},
		Slots: SlotConfig{
			Quantum:     v.GetDuration("SLOT_QUANTUM"),
			HorizonDays: v.GetInt("SLOT_HORIZON_DAYS"),
			Limit:       v.GetInt("SLOT_LIMIT"),
			CacheTTL:    v.GetDuration("SLOT_CACHE_TTL"),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
			TrustedProxies: splitList(v.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.Slots.Quantum <= 0 {
		return nil, errors.New("SLOT_QUANTUM must be positive")
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
