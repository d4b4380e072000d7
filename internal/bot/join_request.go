package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/groupinviter/groupinviterbot/internal/models"
)

// fromTelegramJoinRequest converts a transport join request into the domain
// form. Fields the pinned Bot API release does not carry stay zero.
func fromTelegramJoinRequest(jr *tgbotapi.ChatJoinRequest) models.JoinRequest {
	req := models.JoinRequest{
		ChatID: jr.Chat.ID,
		From: models.TelegramUser{
			ID:           jr.From.ID,
			FirstName:    jr.From.FirstName,
			LastName:     jr.From.LastName,
			Username:     jr.From.UserName,
			LanguageCode: jr.From.LanguageCode,
			IsBot:        jr.From.IsBot,
		},
		Date: time.Unix(int64(jr.Date), 0),
	}

	if jr.InviteLink != nil {
		req.InviteLink = &models.InviteLink{
			URL: jr.InviteLink.InviteLink,
			Creator: models.TelegramUser{
				ID:        jr.InviteLink.Creator.ID,
				FirstName: jr.InviteLink.Creator.FirstName,
				Username:  jr.InviteLink.Creator.UserName,
				IsBot:     jr.InviteLink.Creator.IsBot,
			},
			CreatesJoinRequest: jr.InviteLink.CreatesJoinRequest,
			Name:               jr.InviteLink.Name,
		}
	}

	return req
}

// handleJoinRequest automatically approves join requests that arrived through
// links issued by this bot. Each step is isolated: welcome delivery and
// persistence failures never block the rest, only a failed approval call
// aborts the remaining steps.
func (b *Bot) handleJoinRequest(ctx context.Context, req models.JoinRequest) {
	if !b.isOwnInvite(req.InviteLink) {
		b.logger.Debug("Ignoring join request via external link",
			Int64Field("user_id", req.From.ID),
			StringField("user", req.From.FullName()),
			Int64Field("chat_id", req.ChatID))
		return
	}

	// Welcome the user before letting them in so they are not admitted
	// without context. Delivery is best-effort.
	b.notifyUserOfApproval(req)

	if err := b.approveJoinRequest(req.ChatID, req.From.ID); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			b.logger.Debug("Approval interrupted by shutdown", Int64Field("user_id", req.From.ID))
			return
		}
		b.logger.Warn("Failed to approve join request",
			Int64Field("user_id", req.From.ID),
			ErrorField(err))
		return
	}

	if b.users != nil {
		if err := b.users.UpsertJoinedUser(ctx, req, time.Now().UTC()); err != nil {
			b.logger.Warn("Failed to persist join request",
				Int64Field("user_id", req.From.ID),
				ErrorField(err))
		}
	}

	b.metrics.IncrementApproval(strconv.FormatInt(req.From.ID, 10))

	b.publishJoinApproved(ctx, req)

	b.logger.Info("Approved join request",
		Int64Field("user_id", req.From.ID),
		StringField("user", req.From.FullName()),
		Int64Field("chat_id", req.ChatID))

	username := req.From.Username
	if username == "" {
		username = "нет"
	}
	b.notifier.Notify(fmt.Sprintf("Новый участник одобрен.\nПользователь: %s (@%s)", req.From.FullName(), username), "join-request")
}

// isOwnInvite reports whether the invite link exists and was created by this
// bot. This is the sole admission rule: foreign links are never auto-approved.
func (b *Bot) isOwnInvite(invite *models.InviteLink) bool {
	return invite != nil && invite.Creator.ID == b.selfID
}

// approveJoinRequest calls the platform approval method for (chat, user).
func (b *Bot) approveJoinRequest(chatID, userID int64) error {
	_, err := b.telegramAPI.Request(tgbotapi.ApproveChatJoinRequestConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	})
	return err
}

// notifyUserOfApproval delivers the welcome message through the ordered
// candidate targets, stopping at the first success. Users may block direct
// messages, so giving up silently is expected.
func (b *Bot) notifyUserOfApproval(req models.JoinRequest) {
	text := welcomeMessage(req.From)

	for _, target := range req.DeliveryTargets() {
		msg := tgbotapi.NewMessage(target, text)
		msg.ParseMode = b.config.Telegram.ParseMode

		if _, err := b.telegramAPI.Send(msg); err != nil {
			b.logger.Debug("Failed to deliver welcome message",
				Int64Field("target", target),
				Int64Field("user_id", req.From.ID),
				ErrorField(err))
			continue
		}
		return
	}

	b.logger.Debug("Welcome message undeliverable", Int64Field("user_id", req.From.ID))
}

// welcomeMessage formats the HTML greeting for an approved user.
func welcomeMessage(user models.TelegramUser) string {
	lines := []string{
		fmt.Sprintf("Привет, %s!", html.EscapeString(user.FullName())),
		"Твоя заявка одобрена. Добро пожаловать в чат!",
	}
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("Твой ник: @%s", html.EscapeString(user.Username)))
	}
	return strings.Join(lines, "\n")
}

// publishJoinApproved exports the approval to Kafka when export is enabled.
// Failures are logged by the producer and swallowed here.
func (b *Bot) publishJoinApproved(ctx context.Context, req models.JoinRequest) {
	if b.publisher == nil {
		return
	}

	event := models.JoinApprovedEvent{
		EventID:    uuid.NewString(),
		UserID:     req.From.ID,
		ChatID:     req.ChatID,
		Username:   req.From.Username,
		ApprovedAt: time.Now().UTC(),
	}

	key := strconv.FormatInt(req.From.ID, 10)
	if err := b.publisher.Publish(ctx, key, event); err != nil {
		b.metrics.IncrementError(ErrCodeKafka)
	}
}
