package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values.
type Config struct {
	AppPort      string
	DatabaseURL  string
	JWTSecret    string
	TokenExpires time.Duration
	OTPTTL       time.Duration
	CORSOrigins  string
	LogLevel     string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayQRID          string
	RazorpayWebhookSecret string
	RazorpayBaseURL       string

	SMTPHost     string
	SMTPPort     int
	EmailUser    string
	EmailPass    string
	MailFromName string

	TelegramBotToken  string
	TelegramAdminChat string
}

var defaults = map[string]any{
	"APP_PORT":          "5001",
	"DATABASE_URL":      "mongodb://127.0.0.1:27017/tastetab",
	"JWT_TTL_MINUTES":   60,
	"OTP_TTL_MINUTES":   0,
	"CORS_ORIGINS":      "*",
	"LOG_LEVEL":         "info",
	"RAZORPAY_BASE_URL": "https://api.razorpay.com/v1",
	"SMTP_HOST":         "smtp.gmail.com",
	"SMTP_PORT":         465,
	"MAIL_FROM_NAME":    "TasteTab",
}

// keys read without a default; viper only reports env values for bound keys.
var optionalKeys = []string{
	"JWT_SECRET",
	"RAZORPAY_KEY_ID",
	"RAZORPAY_KEY_SECRET",
	"RAZORPAY_QR_ID",
	"RAZORPAY_WEBHOOK_SECRET",
	"EMAIL_USER",
	"EMAIL_PASS",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_ADMIN_CHAT_ID",
}

// Load reads the .env file (if any), the environment and the optional yaml
// file named by CONFIG_FILE. Environment values win over the file, the file
// wins over defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		AppPort:               v.GetString("APP_PORT"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TokenExpires:          time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
		OTPTTL:                time.Duration(v.GetInt("OTP_TTL_MINUTES")) * time.Minute,
		CORSOrigins:           v.GetString("CORS_ORIGINS"),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
		RazorpayKeyID:         v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayQRID:          v.GetString("RAZORPAY_QR_ID"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		RazorpayBaseURL:       strings.TrimRight(v.GetString("RAZORPAY_BASE_URL"), "/"),
		SMTPHost:              v.GetString("SMTP_HOST"),
		SMTPPort:              v.GetInt("SMTP_PORT"),
		EmailUser:             v.GetString("EMAIL_USER"),
		EmailPass:             v.GetString("EMAIL_PASS"),
		MailFromName:          v.GetString("MAIL_FROM_NAME"),
		TelegramBotToken:      v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChat:     v.GetString("TELEGRAM_ADMIN_CHAT_ID"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppPort == "" {
		return errors.New("APP_PORT must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenExpires <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	if c.OTPTTL < 0 {
		return errors.New("OTP_TTL_MINUTES must not be negative")
	}
	return nil
}

// GatewayEnabled reports whether Razorpay credentials are present.
func (c *Config) GatewayEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
