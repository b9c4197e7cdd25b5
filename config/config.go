// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	MailSMTP    = "smtp"
	MailMailgun = "mailgun"
	MailLog     = "log"
)

type Config struct {
	Env      string
	Port     string
	GinMode  string
	LogLevel string

	CORSAllowedOrigins string // comma-separated

	// Storage
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	RegionDataPath string // empty uses the bundled IEBC dataset

	// Cross-instance room fan-out; empty keeps delivery in-process
	RedisURL string

	// Stream chat and video
	StreamAPIKey      string
	StreamAPISecret   string
	StreamVideoKey    string
	StreamVideoSecret string

	// Cloudflare Workers AI
	CloudflareAccountID string
	CloudflareAPIToken  string
	CloudflareModel     string

	// Mail
	MailProvider  string
	EmailUser     string
	EmailPass     string
	SMTPHost      string
	SMTPPort      int
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	VerifyBaseURL  string
	VerifyTokenTTL time.Duration

	ReconcileInterval time.Duration
	ChatRatePerMinute int

	// Admin endpoints accept HS256 tokens signed with this secret;
	// empty disables them.
	AdminJWTSecret string
}

var ErrMissingMongoURI = errors.New("MONGODB_URI must be set unless STORE_DRIVER=memory")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load reads .env when present and builds the configuration. A missing
// MONGODB_URI is an error unless the in-memory store is selected.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getenv("APP_ENV", "development"),
		Port:     getenv("PORT", "5000"),
		GinMode:  getenv("GIN_MODE", "release"),
		LogLevel: getenv("LOG_LEVEL", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),
		MongoURI:       getenv("MONGODB_URI", ""),
		MongoDatabase:  getenv("MONGODB_DATABASE", "broadcast"),
		RegionDataPath: getenv("REGION_DATASET_PATH", ""),

		RedisURL: getenv("REDIS_URL", ""),

		StreamAPIKey:      getenv("STREAM_API_KEY", ""),
		StreamAPISecret:   getenv("STREAM_API_SECRET", ""),
		StreamVideoKey:    getenv("STREAM_VIDEO_KEY", ""),
		StreamVideoSecret: getenv("STREAM_VIDEO_SECRET", ""),

		CloudflareAccountID: getenv("CLOUDFLARE_ACCOUNT_ID", ""),
		CloudflareAPIToken:  getenv("CLOUDFLARE_API_TOKEN", ""),
		CloudflareModel:     getenv("CLOUDFLARE_AI_MODEL", ""),

		MailProvider:  strings.ToLower(getenv("MAIL_PROVIDER", MailSMTP)),
		EmailUser:     getenv("EMAIL_USER", ""),
		EmailPass:     getenv("EMAIL_PASS", ""),
		SMTPHost:      getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getint("SMTP_PORT", 587),
		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		VerifyBaseURL:  getenv("VERIFY_BASE_URL", "http://localhost:5000"),
		VerifyTokenTTL: getdur("VERIFY_TOKEN_TTL", 24*time.Hour),

		ReconcileInterval: getdur("RECONCILE_INTERVAL", 0),
		ChatRatePerMinute: getint("CHAT_RATE_PER_MINUTE", 30),

		AdminJWTSecret: getenv("ADMIN_JWT_SECRET", ""),
	}

	if cfg.StoreDriver != StoreMemory && cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// CORSOrigins returns the allowed origins as a slice. Empty means any.
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// MailFrom is the sender address for outgoing mail.
func (c *Config) MailFrom() string {
	if c.MailProvider == MailMailgun && c.MailgunSender != "" {
		return c.MailgunSender
	}
	return c.EmailUser
}

// Missing lists the optional integrations that have no credentials.
func (c *Config) Missing() []string {
	var out []string
	if c.StreamAPIKey == "" || c.StreamAPISecret == "" {
		out = append(out, "STREAM_API_KEY/STREAM_API_SECRET")
	}
	if c.StreamVideoKey == "" || c.StreamVideoSecret == "" {
		out = append(out, "STREAM_VIDEO_KEY/STREAM_VIDEO_SECRET")
	}
	if c.CloudflareAccountID == "" || c.CloudflareAPIToken == "" {
		out = append(out, "CLOUDFLARE_ACCOUNT_ID/CLOUDFLARE_API_TOKEN")
	}
	switch c.MailProvider {
	case MailMailgun:
		if c.MailgunDomain == "" || c.MailgunAPIKey == "" {
			out = append(out, "MAILGUN_DOMAIN/MAILGUN_API_KEY")
		}
	case MailSMTP:
		if c.EmailUser == "" || c.EmailPass == "" {
			out = append(out, "EMAIL_USER/EMAIL_PASS")
		}
	}
	return out
}
