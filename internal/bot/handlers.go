package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleMessage routes a text message to its command handler and reports
// whether any handler claimed it.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) bool {
	switch {
	case strings.HasPrefix(message.Text, "/start"):
		b.metrics.IncrementCommand("/start")
		b.handleStart(message)
		return true
	case strings.HasPrefix(message.Text, "/generate_invite"):
		b.metrics.IncrementCommand("/generate_invite")
		b.handleGenerateInvite(ctx, message)
		return true
	default:
		return false
	}
}

// handleStart handles the /start command
func (b *Bot) handleStart(message *tgbotapi.Message) {
	b.sendMessage(message.Chat.ID, "👋 Привет! Я готов помочь тебе управлять приглашениями в группы.")
}

// sendMessage sends a plain message to a chat, logging delivery failures
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.telegramAPI.Send(msg); err != nil {
		b.logger.Error("Failed to send message", err, Int64Field("chat_id", chatID))
	}
}

// sendHTML sends an HTML-formatted message to a chat
func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.config.Telegram.ParseMode
	if _, err := b.telegramAPI.Send(msg); err != nil {
		b.logger.Error("Failed to send message", err, Int64Field("chat_id", chatID))
	}
}
