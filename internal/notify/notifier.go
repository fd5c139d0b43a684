// Package notify delivers HTML messages to Telegram chats.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages per second across all chats.
const DefaultMessagesPerSecond = 25

type Notifier interface {
	SendHTML(chatID int64, html string) error
}

// Sender is the part of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	api     Sender
	limiter *rate.Limiter
}

func NewTelegramNotifier(api Sender) *TelegramNotifier {
	return &TelegramNotifier{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(DefaultMessagesPerSecond), 1),
	}
}

func (n *TelegramNotifier) SendHTML(chatID int64, html string) error {
	if err := n.limiter.Wait(context.Background()); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
