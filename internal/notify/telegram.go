package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Min interval between messages to the same chat; Telegram rate-limits
// around 30 messages per minute per chat.
const telegramSendInterval = 2 * time.Second

// Telegram sends cycle summaries to one chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	me, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("verify telegram bot: %w", err)
	}

	slog.Info("Telegram notifier initialized", "bot", me.UserName, "chat_id", chatID)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, result *models.CycleResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := telegramSendInterval - time.Since(t.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, Summary(result))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.lastSend = time.Now()
	return nil
}
