package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/janus.db"

	// Credential policy
	OTPTTL         time.Duration // validity of an issued passcode
	NotifyWindow   time.Duration // suppression window per rate-limit key
	SingleUseCodes bool          // delete a passcode on first successful redemption

	// Notification sinks
	WebhookURL      string // empty = log-only dispatch
	ApprovalPageURL string // link included in unknown-visitor notifications

	// Expired-row sweep
	SweepIntervalMinutes int // 0 = sweeper disabled

	SeedDev bool
}

func FromEnv() Config {
	addr := getenvDefault("JANUS_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("JANUS_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("JANUS_DB_PATH", "./data/janus.db")

	otpTTL := time.Duration(getenvInt("JANUS_OTP_TTL_SECONDS", 300)) * time.Second
	notifyWindow := time.Duration(getenvInt("JANUS_NOTIFY_WINDOW_SECONDS", 300)) * time.Second

	singleUse := strings.EqualFold(os.Getenv("JANUS_SINGLE_USE_CODES"), "true") ||
		os.Getenv("JANUS_SINGLE_USE_CODES") == "1"

	seedDev := strings.EqualFold(os.Getenv("JANUS_SEED_DEV"), "true") ||
		os.Getenv("JANUS_SEED_DEV") == "1"

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		OTPTTL:         otpTTL,
		NotifyWindow:   notifyWindow,
		SingleUseCodes: singleUse,

		WebhookURL:      strings.TrimSpace(os.Getenv("JANUS_WEBHOOK_URL")),
		ApprovalPageURL: strings.TrimSpace(os.Getenv("JANUS_APPROVAL_PAGE_URL")),

		SweepIntervalMinutes: getenvInt("JANUS_SWEEP_INTERVAL_MINUTES", 10),

		SeedDev: seedDev,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
