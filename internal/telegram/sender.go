package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const typingActionTimeout = 5 * time.Second

// Sender delivers text and chat actions through a Telegram bot.
type Sender struct {
	bot *bot.Bot
}

// NewSender wraps b.
func NewSender(b *bot.Bot) *Sender {
	return &Sender{bot: b}
}

// SendText sends text as a plain message to chatID.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if _, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// SendTyping shows the typing indicator in chatID.
func (s *Sender) SendTyping(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, typingActionTimeout)
	defer cancel()

	if _, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		return fmt.Errorf("send typing action to chat %d: %w", chatID, err)
	}
	return nil
}
