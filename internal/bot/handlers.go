package bot

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"amsvault/internal/apperr"
	"amsvault/internal/appcopy"
	"amsvault/internal/library"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

type reply struct {
	text   string
	markup *tgbotapi.InlineKeyboardMarkup
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !message.IsCommand() {
		b.logAction(message.From.ID, "Received message", message.Text)
		b.send(chatID, reply{text: appcopy.Copy.Prompts.UnknownMessage})
		return
	}

	command := message.Command()
	args := message.CommandArguments()
	switch command {
	case appcopy.Copy.Commands.Register, appcopy.Copy.Commands.Login:
		// Credentials are not logged, and the message is removed from the chat.
		b.logAction(message.From.ID, "Received command", "/"+command)
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, message.MessageID)); err != nil {
			logger.LogMsg(logger.LogWarning, "Could not delete credentials message in chat %d: %v", chatID, err)
		}
	default:
		b.logAction(message.From.ID, "Received command", message.Text)
	}

	b.send(chatID, b.handleCommand(ctx, chatID, command, args))
}

// handleCommand runs one command for a chat and returns the reply to send.
func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) reply {
	ch := b.chats.get(chatID)
	ch.mu.Lock()
	defer ch.mu.Unlock()

	c := appcopy.Copy.Commands
	switch command {
	case c.Start:
		return b.handleStart(ch)
	case c.Help:
		return reply{text: appcopy.Copy.Info.HelpText}
	case c.Register:
		return b.handleRegister(ctx, ch, args)
	case c.Login:
		return b.handleLogin(ctx, ch, args)
	case c.Logout:
		ch.svc.Session().SignOut()
		ch.results = nil
		return reply{text: appcopy.Copy.Info.LoggedOut}
	case c.Search:
		return b.handleSearch(ctx, ch, args)
	case c.Fav:
		idx, status, err := parseFavArgs(args)
		if err != nil {
			return errorReply(err)
		}
		return b.handleFav(ctx, ch, idx, status)
	case c.List:
		return b.handleList(ctx, ch, args)
	case c.Progress:
		return b.handleProgress(ctx, ch, args)
	case c.Remove:
		id, ok := parseID(args)
		if !ok {
			return errorReply(apperr.Validation(appcopy.Copy.Prompts.RemoveUsage))
		}
		return b.handleRemove(ctx, ch, id)
	}
	return reply{text: appcopy.Copy.Prompts.UnknownCommand}
}

func (b *Bot) handleStart(ch *chat) reply {
	text := appcopy.Copy.Info.WelcomeTitle + "\n\n"
	if u := ch.svc.Session().CurrentUser(); u != nil {
		text += fmt.Sprintf(appcopy.Copy.Info.WelcomeSignedIn, html.EscapeString(u.Name))
	} else {
		text += appcopy.Copy.Info.WelcomeSignedOut
	}
	return reply{text: text}
}

func (b *Bot) handleRegister(ctx context.Context, ch *chat, args string) reply {
	in, err := parseRegisterArgs(args)
	if err != nil {
		return errorReply(err)
	}
	u, err := ch.svc.Session().SignUp(ctx, in.name, in.email, in.password)
	if err != nil {
		return errorReply(err)
	}
	ch.results = nil
	return reply{text: fmt.Sprintf(appcopy.Copy.Info.Registered, html.EscapeString(u.Name))}
}

func (b *Bot) handleLogin(ctx context.Context, ch *chat, args string) reply {
	email, password, err := parseLoginArgs(args)
	if err != nil {
		return errorReply(err)
	}
	u, err := ch.svc.Session().SignIn(ctx, email, password)
	if err != nil {
		return errorReply(err)
	}
	ch.results = nil
	return reply{text: fmt.Sprintf(appcopy.Copy.Info.LoggedIn, html.EscapeString(u.Name))}
}

func (b *Bot) handleSearch(ctx context.Context, ch *chat, args string) reply {
	category, query, err := parseSearchArgs(args)
	if err != nil {
		return errorReply(err)
	}
	ch.query = query
	ch.results = ch.svc.Search(ctx, query, category)
	return renderResults(query, ch.results.Items())
}

// handleFav favorites result idx of the last search. The item leaves the list,
// so the remaining results are shown again with their new numbers.
func (b *Bot) handleFav(ctx context.Context, ch *chat, idx int, status store.BookmarkStatus) reply {
	if ch.results == nil {
		return reply{text: appcopy.Copy.Prompts.NoSearchResults}
	}
	c, ok := ch.results.At(idx)
	if !ok {
		return reply{text: fmt.Sprintf(appcopy.Copy.Prompts.InvalidSelection, idx+1)}
	}
	id, err := ch.svc.AddFavorite(ctx, ch.results, c, status)
	if err != nil {
		return errorReply(err)
	}
	done := fmt.Sprintf(appcopy.Copy.Info.Favorited, html.EscapeString(c.Name), id)
	if ch.results.Len() == 0 {
		return reply{text: done}
	}
	rest := renderResults(ch.query, ch.results.Items())
	return reply{text: done + "\n\n" + rest.text, markup: rest.markup}
}

func (b *Bot) handleList(ctx context.Context, ch *chat, args string) reply {
	la := parseListArgs(args)
	list, err := ch.svc.Bookmarks(ctx)
	if err != nil {
		return errorReply(err)
	}
	list = library.FilterBookmarks(list, la.status, la.name)
	return renderBookmarks(list, la.tab)
}

func (b *Bot) handleProgress(ctx context.Context, ch *chat, args string) reply {
	id, ops, err := parseProgressArgs(args)
	if err != nil {
		return errorReply(err)
	}
	return b.applyProgress(ctx, ch, id, ops)
}

func (b *Bot) applyProgress(ctx context.Context, ch *chat, id int64, ops []progressOp) reply {
	draft, err := ch.svc.EditProgress(ctx, id)
	if err != nil {
		return errorReply(err)
	}
	for _, op := range ops {
		op.apply(draft)
	}
	if err := draft.Commit(ctx); err != nil {
		draft.Discard()
		return errorReply(err)
	}
	return reply{text: fmt.Sprintf(appcopy.Copy.Info.ProgressSaved, id)}
}

func (b *Bot) handleRemove(ctx context.Context, ch *chat, id int64) reply {
	if err := ch.svc.RemoveFavorite(ctx, id); err != nil {
		return errorReply(err)
	}
	return reply{text: fmt.Sprintf(appcopy.Copy.Info.Removed, id)}
}
