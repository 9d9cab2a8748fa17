package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewNewSessionHandler returns a handler for the /new command. The previous
// conversation stays in the audit log behind a session marker.
func NewNewSessionHandler(deps HandlerDeps) bot.HandlerFunc {
	return newSessionHandler{deps}.Handle
}

type newSessionHandler struct {
	deps HandlerDeps
}

func (h newSessionHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "new")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "New session handler called with nil Message or From", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	h.deps.Router.StartNewSession(ctx, userID)
	log.InfoContext(ctx, "Started new conversation", "chat_id", chatID, "user_id", userID)

	h.deps.reply(ctx, log, chatID, h.deps.Config.Messages.NewSession)
}
