package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"amsvault/internal/library"
	"amsvault/internal/logger"
)

const (
	actionFav    = "fav"
	actionBump   = "bump"
	actionRemove = "remove"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.logAction(query.From.ID, "Received callback query", query.Data)

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.LogMsg(logger.LogWarning, "Failed to answer callback %s: %v", query.ID, err)
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	b.send(chatID, b.handleCallbackData(ctx, chatID, query.Data))
}

// handleCallbackData runs the action encoded in an inline button. Malformed
// data is logged and ignored.
func (b *Bot) handleCallbackData(ctx context.Context, chatID int64, data string) reply {
	parts := strings.Split(data, ":")
	ch := b.chats.get(chatID)
	ch.mu.Lock()
	defer ch.mu.Unlock()

	switch parts[0] {
	case actionFav:
		if len(parts) < 2 {
			break
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			break
		}
		return b.handleFav(ctx, ch, n-1, "")
	case actionBump:
		if len(parts) < 3 {
			break
		}
		id, ok := parseID(parts[1])
		if !ok {
			break
		}
		field, err := library.ParseField(parts[2])
		if err != nil {
			break
		}
		return b.applyProgress(ctx, ch, id, []progressOp{{field: field, op: '+', value: 1}})
	case actionRemove:
		if len(parts) < 2 {
			break
		}
		id, ok := parseID(parts[1])
		if !ok {
			break
		}
		return b.handleRemove(ctx, ch, id)
	}

	logger.LogMsg(logger.LogError, "Invalid callback data: %s", data)
	return reply{}
}
