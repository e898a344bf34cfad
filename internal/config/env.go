package config

import (
	"os"
	"strconv"
)

// Environment carries the operational knobs that don't belong in the
// user-facing JSON: paths, endpoints, credentials, tuning.
type Environment struct {
	DataDir  string
	Sink     string // sqlite or sheet
	HTTPAddr string // empty = control API off

	RedisURL string // empty = scrape cache off

	CompanyAPI string // enrichment endpoints, empty = lookups degrade
	SalaryAPI  string

	SMTPHost string
	SMTPPort int
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	TelegramChatID int64

	EnrichWorkers int
}

// FromEnv reads the JOBFEED_* knobs with their defaults. Secrets
// (API keys, bot token, IMAP password) go through internal/secrets
// instead so the keyring fallback applies.
func FromEnv() Environment {
	return Environment{
		DataDir:        getEnv("JOBFEED_DATA_DIR", "."),
		Sink:           getEnv("JOBFEED_SINK", "sqlite"),
		HTTPAddr:       getEnv("JOBFEED_HTTP_ADDR", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		CompanyAPI:     getEnv("JOBFEED_COMPANY_API", ""),
		SalaryAPI:      getEnv("JOBFEED_SALARY_API", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPFrom:       getEnv("SMTP_FROM", "jobfeed@localhost"),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPass:       getEnv("SMTP_PASS", ""),
		TelegramChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),
		EnrichWorkers:  getEnvInt("JOBFEED_ENRICH_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
