package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/groupinviter/groupinviterbot/internal/models"
)

// TelegramAPI defines the interface for Telegram bot operations
type TelegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// Logger defines the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Fatal(msg string, err error, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// UserStore persists user snapshots from approved join requests
type UserStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertJoinedUser(ctx context.Context, req models.JoinRequest, ts time.Time) error
	Close() error
}

// EventPublisher exports join events to an external broker
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
	Close() error
}

// Metrics defines the interface for metrics collection
type Metrics interface {
	IncrementApproval(userID string)
	IncrementCommand(command string)
	IncrementUnhandled()
	IncrementError(errorType string)
}
