// Package config provides runtime configuration for the bot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every knob the bot reads from the environment.
type Config struct {
	// HTTP server.
	ListenAddr      string
	ShutdownTimeout time.Duration

	// WhatsApp Cloud API.
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	VerifyToken   string

	// Conversation behavior.
	SessionTimeout   time.Duration
	InteractiveMenus bool

	// Data files.
	DataFile    string
	CatalogFile string

	// Order export. Empty disables export.
	ExportWebhookURL string

	// Worker pool and per-user rate limiting.
	WorkerCount     int
	RateLimitBurst  int
	RateLimitRefill int
	RateLimitPeriod time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from the environment with defaults.
func Load() Config {
	return Config{
		ListenAddr:      getenv("HTTP_ADDR", ":5000"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 30),

		AccessToken:   os.Getenv("ACCESS_TOKEN"),
		PhoneNumberID: os.Getenv("PHONE_NUMBER_ID"),
		APIVersion:    getenv("VERSION", "v23.0"),
		VerifyToken:   getenv("VERIFY_TOKEN", "shopease_verify_token"),

		SessionTimeout:   durenvs("SESSION_TIMEOUT", 300),
		InteractiveMenus: boolenv("INTERACTIVE_MENUS", false),

		DataFile:    getenv("DATA_FILE", "user_data.json"),
		CatalogFile: os.Getenv("CATALOG_FILE"),

		ExportWebhookURL: os.Getenv("EXPORT_WEBHOOK_URL"),

		WorkerCount:     atoienv("WORKER_COUNT", 4),
		RateLimitBurst:  atoienv("RATE_LIMIT_BURST", 10),
		RateLimitRefill: atoienv("RATE_LIMIT_REFILL", 1),
		RateLimitPeriod: durenvs("RATE_LIMIT_PERIOD", 6),
	}
}

// Validate checks the fields without defaults.
func (c Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("ACCESS_TOKEN is required")
	}
	if c.PhoneNumberID == "" {
		return fmt.Errorf("PHONE_NUMBER_ID is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}
