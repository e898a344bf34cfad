package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobfeed-engine/internal/pipeline"
)

// Telegram sends summaries to a chat via the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram validates the token against the Bot API, so construct it
// only when a token is actually configured.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, sum pipeline.Summary) error {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf(
		"<b>Job Aggregator Bot: %d new jobs stored.</b>\nScraped %d, %d after dedup, %d enriched.",
		sum.Stored, sum.Scraped, sum.AfterDedup, sum.Enriched,
	))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: sending message: %w", err)
	}
	return nil
}
