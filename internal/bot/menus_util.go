package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"amsvault/internal/appcopy"
	"amsvault/internal/catalog"
	"amsvault/internal/library"
	"amsvault/internal/store"
)

const (
	resultButtonsPerRow = 5
	maxBookmarkButtons  = 10
)

func appendButtonsInRows(keyboard [][]tgbotapi.InlineKeyboardButton, buttons []tgbotapi.InlineKeyboardButton, perRow int) [][]tgbotapi.InlineKeyboardButton {
	if perRow <= 1 {
		for _, btn := range buttons {
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}
		return keyboard
	}

	for i := 0; i < len(buttons); i += perRow {
		end := min(i+perRow, len(buttons))
		keyboard = append(keyboard, buttons[i:end])
	}
	return keyboard
}

func resultsKeyboard(items []catalog.Candidate) *tgbotapi.InlineKeyboardMarkup {
	if len(items) == 0 {
		return nil
	}
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(items))
	for i := range items {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf(appcopy.Copy.Buttons.AddFavorite, i+1),
			fmt.Sprintf("%s:%d", actionFav, i+1),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(appendButtonsInRows(nil, buttons, resultButtonsPerRow)...)
	return &kb
}

// bumpField is the counter the quick "+1" button advances.
func bumpField(source store.Source) library.Field {
	if source.IsReadable() {
		return library.FieldChapter
	}
	return library.FieldEpisode
}

func bookmarksKeyboard(list []store.BookmarkWithStory) *tgbotapi.InlineKeyboardMarkup {
	if len(list) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range list[:min(len(list), maxBookmarkButtons)] {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf(appcopy.Copy.Buttons.Bump, b.ID),
				fmt.Sprintf("%s:%d:%s", actionBump, b.ID, bumpField(b.Story.Source)),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf(appcopy.Copy.Buttons.Remove, b.ID),
				fmt.Sprintf("%s:%d", actionRemove, b.ID),
			),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
