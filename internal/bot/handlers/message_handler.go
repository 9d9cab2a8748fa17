package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewMessageHandler returns the default handler. Plain text messages go
// through the relay; every other update is ignored.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		h.deps.Logger.DebugContext(ctx, "Ignoring non-text update", "update_id", update.ID)
		return
	}

	h.deps.Router.HandleMessage(ctx, msg.From.ID, msg.Chat.ID, msg.Text)
}
