package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/inference"
	"github.com/edgard/carydes/internal/relay"
)

// Prober reports whether the inference server is up.
type Prober interface {
	Probe(ctx context.Context) inference.Status
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Sender relay.Sender
	Router *relay.Router
	Prober Prober
}

// reply sends text to chatID, logging a failed delivery.
func (d HandlerDeps) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if err := d.Sender.SendText(ctx, chatID, text); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
