package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string
	LogFormat    string

	// Reporting defaults. Every monetary aggregate is computed in a single
	// currency; this is the one used when a request does not name its own.
	DefaultCurrency string

	// Forecast engine knobs.
	ForecastMaxIterations int
	ReminderLookaheadDays int
	CashflowDefaultMonths int

	MaxUploadSizeBytes int64

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	// Daily reminder digest sent by the scheduler.
	DigestEnabled   bool
	DigestCronSpec  string
	DigestRecipient string
	DigestLookahead time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	forecastMaxIterations := getEnvAsInt("FORECAST_MAX_ITERATIONS", 24)
	if forecastMaxIterations < 1 {
		log.Printf("WARNING: FORECAST_MAX_ITERATIONS must be at least 1, got %d. Using default 24.", forecastMaxIterations)
		forecastMaxIterations = 24
	}

	reminderLookaheadDays := getEnvAsInt("REMINDER_LOOKAHEAD_DAYS", 30)
	if reminderLookaheadDays < 1 {
		log.Printf("WARNING: REMINDER_LOOKAHEAD_DAYS must be at least 1, got %d. Using default 30.", reminderLookaheadDays)
		reminderLookaheadDays = 30
	}

	cashflowDefaultMonths := getEnvAsInt("CASHFLOW_DEFAULT_MONTHS", 6)
	if cashflowDefaultMonths < 1 || cashflowDefaultMonths > 24 {
		log.Printf("WARNING: CASHFLOW_DEFAULT_MONTHS must be between 1 and 24, got %d. Using default 6.", cashflowDefaultMonths)
		cashflowDefaultMonths = 6
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./tallytrace.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "PHP"),

		ForecastMaxIterations: forecastMaxIterations,
		ReminderLookaheadDays: reminderLookaheadDays,
		CashflowDefaultMonths: cashflowDefaultMonths,

		MaxUploadSizeBytes: maxUploadSizeBytes,

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Tally & Trace"),

		DigestEnabled:   getEnvAsBool("DIGEST_ENABLED", false),
		DigestCronSpec:  getEnv("DIGEST_CRON_SPEC", "0 7 * * *"),
		DigestRecipient: getEnv("DIGEST_RECIPIENT", ""),
		DigestLookahead: getEnvAsDuration("DIGEST_LOOKAHEAD", 72*time.Hour),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	if Cfg.DigestEnabled && Cfg.DigestRecipient == "" {
		log.Fatalf("FATAL: DIGEST_RECIPIENT is required when DIGEST_ENABLED is true.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, EmailProvider=%s, DigestEnabled=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider, Cfg.DigestEnabled)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
