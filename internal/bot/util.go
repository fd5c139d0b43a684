package bot

import (
	"html"

	"amsvault/internal/apperr"
	"amsvault/internal/appcopy"
	"amsvault/internal/logger"
)

func (b *Bot) logAction(userID int64, action, details string) {
	logger.LogMsg(logger.LogInfo, "[User: %d] [%s] %s", userID, action, details)
}

// errorReply turns err into a message for the chat. Domain errors carry their
// own text; anything else is logged and reported generically.
func errorReply(err error) reply {
	if e := apperr.As(err); e != nil {
		if e.Cause != nil {
			logger.LogMsg(logger.LogWarning, "%s: %v", e.Kind, e.Cause)
		}
		return reply{text: "⚠️ " + html.EscapeString(e.Message)}
	}
	logger.LogMsg(logger.LogError, "Unexpected error: %v", err)
	return reply{text: appcopy.Copy.Errors.Generic}
}
