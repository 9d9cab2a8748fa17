package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/carydes/internal/inference"
)

// NewStatusHandler returns a handler for the /status command, which probes
// the inference server and reports the outcome.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Status handler called with nil Message or From", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	status := h.deps.Prober.Probe(ctx)
	log.InfoContext(ctx, "Inference server status checked", "chat_id", chatID, "user_id", update.Message.From.ID, "status", status.String())

	msgs := h.deps.Config.Messages
	text := msgs.StatusDown
	switch status {
	case inference.StatusResponding:
		text = msgs.StatusOK
	case inference.StatusErroring:
		text = msgs.StatusDegraded
	}

	h.deps.reply(ctx, log, chatID, text)
}
