package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amsvault/internal/appcopy"
	"amsvault/internal/catalog"
	"amsvault/internal/config"
	"amsvault/internal/kvstore"
	"amsvault/internal/store"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeSearcher struct{ items []catalog.Candidate }

func (f fakeSearcher) Search(context.Context, string, catalog.Category) []catalog.Candidate {
	return f.items
}

func newTestBot(t *testing.T, cfg *config.Config) (*Bot, *fakeAPI, store.Store) {
	t.Helper()
	st, err := kvstore.Open(context.Background(), kvstore.NewMemoryEngine())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	api := &fakeAPI{}
	searcher := fakeSearcher{items: []catalog.Candidate{
		{ExternalID: 269, Name: "Bleach", Source: store.SourceAnime, TotalEpisode: 366},
	}}
	return New(api, st, searcher, cfg), api, st
}

func commandMessage(chatID, userID int64, text string) *tgbotapi.Message {
	cmd, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestCommandFlow(t *testing.T) {
	ctx := context.Background()
	b, _, st := newTestBot(t, nil)
	const chatID = 100

	r := b.handleCommand(ctx, chatID, "search", "bleach")
	assert.Contains(t, r.text, "1. <b>Bleach</b> [anime]")
	require.NotNil(t, r.markup)
	assert.Equal(t, "fav:1", *r.markup.InlineKeyboard[0][0].CallbackData)

	r = b.handleCommand(ctx, chatID, "fav", "1")
	assert.Contains(t, r.text, "Please sign in first")

	r = b.handleCommand(ctx, chatID, "register", "Ana Lima ana@example.com pw")
	assert.Contains(t, r.text, "Ana Lima")

	r = b.handleCommand(ctx, chatID, "fav", "1")
	assert.Contains(t, r.text, "Run /search first")

	b.handleCommand(ctx, chatID, "search", "bleach")
	r = b.handleCommand(ctx, chatID, "fav", "1 plan")
	assert.Contains(t, r.text, "<b>Bleach</b> added to favorites (#1)")

	u, err := st.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{chatID}, b.ChatIDsForUser(u.ID))

	r = b.handleCommand(ctx, chatID, "search", "bleach")
	assert.Contains(t, r.text, "No results")

	r = b.handleCommand(ctx, chatID, "progress", "1 season=1 episode=12")
	assert.Contains(t, r.text, "Progress saved for #1")

	r = b.handleCallbackData(ctx, chatID, "bump:1:episode")
	assert.Contains(t, r.text, "Progress saved")

	r = b.handleCommand(ctx, chatID, "list", "anime")
	assert.Contains(t, r.text, "#1 <b>Bleach</b> · plan · S1 E13")
	require.NotNil(t, r.markup)
	assert.Equal(t, "bump:1:episode", *r.markup.InlineKeyboard[0][0].CallbackData)

	r = b.handleCommand(ctx, chatID, "list", "manga")
	assert.Equal(t, appcopy.Copy.Info.ListEmpty, r.text)

	r = b.handleCallbackData(ctx, chatID, "remove:1")
	assert.Contains(t, r.text, "#1 removed")

	r = b.handleCommand(ctx, chatID, "list", "")
	assert.Equal(t, appcopy.Copy.Info.ListEmpty, r.text)

	b.handleCommand(ctx, chatID, "logout", "")
	assert.Empty(t, b.ChatIDsForUser(u.ID))
}

func TestChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBot(t, nil)

	b.handleCommand(ctx, 1, "register", "Ana ana@example.com pw")
	r := b.handleCommand(ctx, 2, "list", "")
	assert.Contains(t, r.text, "Please sign in first")

	r = b.handleCommand(ctx, 2, "login", "ana@example.com wrong")
	assert.Contains(t, r.text, "Invalid email or password")
	r = b.handleCommand(ctx, 2, "login", "ana@example.com pw")
	assert.Contains(t, r.text, "Signed in as <b>Ana</b>")
	assert.Equal(t, []int64{1, 2}, b.ChatIDsForUser(1))
}

func TestRegisterMessageIsDeleted(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleMessage(context.Background(), commandMessage(5, 5, "/register Ana ana@example.com pw"))

	require.Len(t, api.requests, 1)
	del, ok := api.requests[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, 7, del.MessageID)

	msg := api.last()
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Account created")
}

func TestUnauthorizedUser(t *testing.T) {
	b, api, _ := newTestBot(t, &config.Config{AllowedUsers: []int64{1}})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(9, 2, "/start")})
	assert.Equal(t, appcopy.Copy.Prompts.Unauthorized, api.last().Text)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(9, 1, "/start")})
	assert.Contains(t, api.last().Text, "Welcome to AMSVault")
}

func TestUnknownInput(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBot(t, nil)

	assert.Equal(t, appcopy.Copy.Prompts.UnknownCommand, b.handleCommand(ctx, 1, "nope", "").text)

	b.handleMessage(ctx, &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"})
	assert.Equal(t, appcopy.Copy.Prompts.UnknownMessage, api.last().Text)

	assert.Empty(t, b.handleCallbackData(ctx, 1, "bump:x").text)
}

func TestValidationMessagesAreEscaped(t *testing.T) {
	b, _, _ := newTestBot(t, nil)
	r := b.handleCommand(context.Background(), 1, "remove", "")
	assert.Contains(t, r.text, "&lt;id&gt;")
}
