package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// handleGenerateInvite lets the administrator create invite links that funnel
// every join through the approval workflow. Only the configured admin, acting
// from a private chat, may invoke it.
func (b *Bot) handleGenerateInvite(ctx context.Context, message *tgbotapi.Message) {
	if !b.isAdmin(message) {
		b.sendMessage(message.Chat.ID, "Эта команда доступна только администратору.")
		return
	}

	if !message.Chat.IsPrivate() {
		b.sendMessage(message.Chat.ID, "Создавать ссылки можно только из приватного чата с ботом.")
		return
	}

	args := commandArguments(message.Text)
	if args == "" {
		b.sendMessage(message.Chat.ID, "Укажите ID чата: /generate_invite <chat_id>.")
		return
	}

	targetChatID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendMessage(message.Chat.ID, "Некорректный ID чата. Используйте числовой идентификатор.")
		return
	}

	invite, err := b.createInviteLink(targetChatID)
	if err != nil {
		b.logger.Warn("Failed to create invite link",
			Int64Field("chat_id", targetChatID),
			ErrorField(err))
		b.sendMessage(message.Chat.ID, "Не удалось создать ссылку. Убедитесь, что бот имеет права администратора.")
		return
	}

	b.sendHTML(message.Chat.ID, formatInviteMessage(invite))
}

// isAdmin reports whether the message came from the configured administrator
func (b *Bot) isAdmin(message *tgbotapi.Message) bool {
	adminID := b.config.Telegram.AdminChatID
	return adminID != 0 && message.From != nil && message.From.ID == adminID
}

// commandArguments returns everything after the command itself
func commandArguments(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// createInviteLink creates an approval-gated invite link on the target chat.
// The uuid suffix keeps link names unique within a second.
func (b *Bot) createInviteLink(chatID int64) (*tgbotapi.ChatInviteLink, error) {
	name := fmt.Sprintf("Bot invite %s %s",
		time.Now().UTC().Format("2006-01-02T15:04:05"),
		uuid.NewString()[:8])

	resp, err := b.telegramAPI.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:         tgbotapi.ChatConfig{ChatID: chatID},
		Name:               name,
		CreatesJoinRequest: true,
	})
	if err != nil {
		return nil, err
	}

	var invite tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &invite); err != nil {
		return nil, NewTelegramError("failed to decode invite link response", err)
	}

	return &invite, nil
}

// formatInviteMessage renders the admin-facing confirmation
func formatInviteMessage(invite *tgbotapi.ChatInviteLink) string {
	name := invite.Name
	if name == "" {
		name = time.Now().UTC().Format("2006-01-02T15:04:05")
	}
	return fmt.Sprintf("Создана новая пригласительная ссылка:\n%s\nНазвание: %s",
		html.EscapeString(invite.InviteLink),
		html.EscapeString(name))
}
