package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"amsvault/internal/appcopy"
	"amsvault/internal/config"
	"amsvault/internal/library"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot.
type Bot struct {
	api    API
	config *config.Config
	chats  *Chats
	wg     sync.WaitGroup
}

// New creates a new Bot. Every chat gets its own session over st.
func New(api API, st store.Store, searcher library.Searcher, cfg *config.Config, opts ...library.Option) *Bot {
	return &Bot{
		api:    api,
		config: cfg,
		chats:  NewChats(st, searcher, opts...),
	}
}

// ChatIDsForUser returns the chats currently signed in as userID.
func (b *Bot) ChatIDsForUser(userID int64) []int64 {
	return b.chats.ChatIDsForUser(userID)
}

// Start listens for updates until ctx is done. Updates of different chats are
// handled concurrently; a chat's own updates are handled in order.
func (b *Bot) Start(ctx context.Context) {
	b.setCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		if !b.isAuthorized(update.Message.From.ID) {
			b.sendUnauthorizedMessage(update.Message.Chat.ID)
			return
		}
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		if !b.isAuthorized(update.CallbackQuery.From.ID) {
			if update.CallbackQuery.Message != nil {
				b.sendUnauthorizedMessage(update.CallbackQuery.Message.Chat.ID)
			}
			return
		}
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) setCommands() {
	c := appcopy.Copy.Commands
	commands := []tgbotapi.BotCommand{
		{Command: c.Start, Description: c.StartDesc},
		{Command: c.Help, Description: c.HelpDesc},
		{Command: c.Register, Description: c.RegisterDesc},
		{Command: c.Login, Description: c.LoginDesc},
		{Command: c.Logout, Description: c.LogoutDesc},
		{Command: c.Search, Description: c.SearchDesc},
		{Command: c.Fav, Description: c.FavDesc},
		{Command: c.List, Description: c.ListDesc},
		{Command: c.Progress, Description: c.ProgressDesc},
		{Command: c.Remove, Description: c.RemoveDesc},
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		logger.LogMsg(logger.LogWarning, "Failed to register bot commands: %v", err)
	}
}

func (b *Bot) isAuthorized(userID int64) bool {
	return b.config == nil || b.config.IsUserAllowed(userID)
}

func (b *Bot) sendUnauthorizedMessage(chatID int64) {
	b.send(chatID, reply{text: appcopy.Copy.Prompts.Unauthorized})
}

func (b *Bot) send(chatID int64, r reply) {
	if r.text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, r.text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if r.markup != nil {
		msg.ReplyMarkup = *r.markup
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.LogMsg(logger.LogWarning, "Failed sending message to %d: %v", chatID, err)
	}
}
