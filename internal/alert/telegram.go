// Package alert notifies operators when an import invocation fails outright.
package alert

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"match_importer/internal/logging"
)

// Telegram rejects bursts above roughly 30 messages a minute per chat.
const sendInterval = 2 * time.Second

const maxMessageLength = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot      sender
	chatID   int64
	interval time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	lastSend time.Time
}

func NewTelegram(token string, chatID int64, logger *logging.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}
	bot.Debug = false

	logger.Info("telegram alerts enabled", "chat_id", chatID, "bot", bot.Self.UserName)
	return newTelegram(bot, chatID, logger), nil
}

func newTelegram(bot sender, chatID int64, logger *logging.Logger) *Telegram {
	return &Telegram{
		bot:      bot,
		chatID:   chatID,
		interval: sendInterval,
		logger:   logger,
	}
}

// Alert sends text to the configured chat, waiting out the send interval if
// the previous alert was too recent.
func (t *Telegram) Alert(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := t.interval - time.Since(t.lastSend); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, truncate(text, maxMessageLength))
	msg.DisableWebPagePreview = true

	t.lastSend = time.Now()
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("telegram alert failed", "error", err)
		return errors.Wrap(err, "send telegram alert")
	}
	return nil
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
