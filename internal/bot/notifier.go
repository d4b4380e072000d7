package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminNotifier delivers best-effort notifications to the configured
// administrator. Failures are logged and swallowed, never retried.
type AdminNotifier struct {
	api    TelegramAPI
	logger Logger
	chatID int64
}

// NewAdminNotifier creates a notifier. A zero chatID disables delivery.
func NewAdminNotifier(api TelegramAPI, logger Logger, chatID int64) *AdminNotifier {
	return &AdminNotifier{
		api:    api,
		logger: logger,
		chatID: chatID,
	}
}

// Notify sends a message to the administrator. The context label names the
// originating operation in the failure log.
func (n *AdminNotifier) Notify(message, context string) {
	if n.chatID == 0 {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("Failed to notify admin",
			StringField("context", context),
			ErrorField(err))
	}
}
