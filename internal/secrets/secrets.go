// Package secrets resolves the credentials that never belong in config
// files. Environment wins; the OS keychain is the durable fallback.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"jobfeed-engine/internal/config"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobfeed"

const (
	EnvEmailPassword = "JOBFEED_EMAIL_PASSWORD"
	EnvEnrichmentKey = "JOBFEED_ENRICHMENT_KEY"
	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"

	enrichmentAccount = "enrichment"
	telegramAccount   = "telegram"
)

// IMAPAccount names the keychain entry for a mailbox's password.
func IMAPAccount(src config.EmailSource) string {
	return fmt.Sprintf("jobfeed:imap:%s@%s", src.Username, src.IMAPHost)
}

// IMAPPassword resolves the mail password for the alerts inbox.
// Returns "" when neither the env var nor the keychain has one; the
// email source decides whether that is fatal.
func IMAPPassword(src config.EmailSource) string {
	if pw := os.Getenv(EnvEmailPassword); strings.TrimSpace(pw) != "" {
		return pw
	}
	pw, err := keyring.Get(KeyringService, IMAPAccount(src))
	if err != nil {
		return ""
	}
	return pw
}

// SetIMAPPassword stores the mail password in the keychain.
func SetIMAPPassword(src config.EmailSource, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	if src.Username == "" || src.IMAPHost == "" {
		return errors.New("email source has no username/host to key the password on")
	}
	return keyring.Set(KeyringService, IMAPAccount(src), password)
}

// EnrichmentKey resolves the bearer token for the enrichment APIs.
// Empty means the lookups run unauthenticated.
func EnrichmentKey() string {
	if k := os.Getenv(EnvEnrichmentKey); strings.TrimSpace(k) != "" {
		return k
	}
	k, err := keyring.Get(KeyringService, enrichmentAccount)
	if err != nil {
		return ""
	}
	return k
}

// SetEnrichmentKey stores the enrichment bearer token in the keychain.
func SetEnrichmentKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, enrichmentAccount, key)
}

// DeleteEnrichmentKey removes the stored token.
func DeleteEnrichmentKey() error {
	return keyring.Delete(KeyringService, enrichmentAccount)
}

// TelegramToken resolves the notification bot's token. Empty means
// Telegram notifications are off.
func TelegramToken() string {
	if t := os.Getenv(EnvTelegramToken); strings.TrimSpace(t) != "" {
		return t
	}
	t, err := keyring.Get(KeyringService, telegramAccount)
	if err != nil {
		return ""
	}
	return t
}
