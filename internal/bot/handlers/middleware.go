// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AuthorizedOnly creates a middleware that lets only whitelisted users through.
// Anyone else gets the not-authorized reply and the handler is skipped.
func AuthorizedOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			userID := update.Message.From.ID
			if !deps.Config.Telegram.Allows(userID) {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "AuthorizedOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
				deps.reply(ctx, log, chatID, deps.Config.Messages.NotAuthorized)
				return
			}

			next(ctx, bot, update)
		}
	}
}
