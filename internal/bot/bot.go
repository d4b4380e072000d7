package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/groupinviter/groupinviterbot/internal/config"
	"github.com/groupinviter/groupinviterbot/internal/storage"
	"github.com/groupinviter/groupinviterbot/pkg/kafka"
)

const updateTimeout = 30 * time.Second

// Bot represents the group inviter bot instance with dependency injection
type Bot struct {
	// Configuration
	config *config.BotConfig

	// Dependencies (interfaces for better testability)
	logger      Logger
	telegramAPI TelegramAPI
	users       UserStore
	publisher   EventPublisher
	metrics     Metrics
	notifier    *AdminNotifier

	// Own identity, used for the invite link provenance check
	selfID int64

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Graceful shutdown
	wg       sync.WaitGroup
	stopOnce sync.Once

	metricsServer *metricsServer
}

// BotOptions contains options for creating a new bot instance
type BotOptions struct {
	Config      *config.BotConfig
	Logger      Logger
	TelegramAPI TelegramAPI
	Users       UserStore
	Publisher   EventPublisher
	Metrics     Metrics
	SelfID      int64
}

// New creates a new bot instance with dependency injection
func New(opts BotOptions) (*Bot, error) {
	if opts.Config == nil {
		return nil, NewValidationError("config is required", nil)
	}
	if opts.TelegramAPI == nil {
		return nil, NewValidationError("telegram API is required", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		config:      opts.Config,
		logger:      opts.Logger,
		telegramAPI: opts.TelegramAPI,
		users:       opts.Users,
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		selfID:      opts.SelfID,
		ctx:         ctx,
		cancel:      cancel,
	}

	// Set defaults if not provided
	if bot.logger == nil {
		logrusLogger := logrus.New()
		logrusLogger.SetLevel(logrus.InfoLevel)
		bot.logger = NewStructuredLogger(logrusLogger)
	}

	if bot.metrics == nil {
		bot.metrics = NewInMemoryMetrics()
	}

	bot.notifier = NewAdminNotifier(bot.telegramAPI, bot.logger, opts.Config.Telegram.AdminChatID)

	return bot, nil
}

// NewFromConfig creates a bot instance from configuration
func NewFromConfig(cfg *config.BotConfig, logger *logrus.Logger) (*Bot, error) {
	// Initialize Telegram bot
	tgBot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, NewTelegramError("failed to create Telegram bot", err)
	}

	logger.WithField("username", tgBot.Self.UserName).Info("Telegram bot authorized")

	// Initialize user store
	users, err := storage.New(cfg.Database.URL)
	if err != nil {
		return nil, NewDatabaseError("failed to connect to database", err)
	}

	logger.Info("Database connection established")

	// Initialize Kafka producer if enabled
	var publisher EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			Compression:  cfg.Kafka.Compression,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			BatchSize:    cfg.Kafka.BatchSize,
			RequiredAcks: cfg.Kafka.RequiredAcks,
		}, logger)
		if err != nil {
			// Export is observational, run without it
			logger.WithError(err).Error("Failed to create Kafka producer, join events will not be exported")
		} else {
			publisher = producer
		}
	}

	return New(BotOptions{
		Config:      cfg,
		Logger:      NewStructuredLogger(logger),
		TelegramAPI: tgBot,
		Users:       users,
		Publisher:   publisher,
		Metrics:     NewInMemoryMetrics(),
		SelfID:      tgBot.Self.ID,
	})
}

// Start initializes the schema, starts the metrics server and the Telegram
// updates handler, and notifies the administrator.
func (b *Bot) Start() error {
	b.logger.Info("Starting group inviter bot")

	// Initialize database schema if store is available
	if b.users != nil {
		if err := b.users.EnsureSchema(b.ctx); err != nil {
			return NewDatabaseError("failed to initialize database schema", err)
		}
	}

	if b.config.Metrics.Enabled {
		b.metricsServer = newMetricsServer(b.config.Metrics, b.metrics, b.logger)
		b.metricsServer.Start()
	}

	if err := b.startTelegramHandler(); err != nil {
		return NewTelegramError("failed to start Telegram handler", err)
	}

	b.logger.Info("Group inviter bot started successfully")
	b.notifier.Notify(fmt.Sprintf("Bot started successfully at %s.", timestampLabel()), "startup")

	return nil
}

// startTelegramHandler starts the Telegram updates handler
func (b *Bot) startTelegramHandler() error {
	if b.telegramAPI == nil {
		return NewTelegramError("Telegram API not initialized", nil)
	}

	// Configure updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.telegramAPI.GetUpdatesChan(u)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handleUpdates(updates)
	}()

	b.logger.Info("Telegram updates handler started")
	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop() error {
	b.stopOnce.Do(b.stop)
	return nil
}

func (b *Bot) stop() {
	b.logger.Info("Initiating graceful shutdown")

	b.notifier.Notify(fmt.Sprintf("Bot stopped at %s.", timestampLabel()), "shutdown")

	// Cancel context to stop all operations
	b.cancel()

	// Stop receiving Telegram updates
	if b.telegramAPI != nil {
		b.telegramAPI.StopReceivingUpdates()
	}

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("All goroutines stopped gracefully")
	case <-time.After(30 * time.Second):
		b.logger.Warn("Timeout waiting for goroutines to stop")
	}

	if b.metricsServer != nil {
		b.metricsServer.Stop()
	}

	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			b.logger.Error("Error closing Kafka producer", err)
		}
	}

	if b.users != nil {
		if err := b.users.Close(); err != nil {
			b.logger.Error("Error closing database connection", err)
		}
	}

	b.logger.Info("Bot stopped successfully")
}

// handleUpdates processes incoming Telegram updates
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	b.logger.Info("Starting Telegram updates processing")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("Updates channel closed, stopping handler")
				return
			}

			// Process update with timeout and error handling
			ctx, cancel := context.WithTimeout(b.ctx, updateTimeout)
			b.processUpdate(ctx, update)
			cancel()

		case <-b.ctx.Done():
			b.logger.Info("Context cancelled, stopping updates handler")
			return
		}
	}
}

// processUpdate processes a single update with error recovery. A panic in a
// handler is logged, counted and reported to the administrator; it never
// crashes the process, and cancellation is never reported.
func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			if b.ctx.Err() != nil {
				return
			}

			err := fmt.Errorf("panic: %v", r)
			b.logger.Error("Unhandled failure while processing update", err,
				StringField("update", serializeUpdate(update)))
			b.metrics.IncrementError(ErrCodeInternal)
			b.notifier.Notify(fmt.Sprintf("Bot encountered an unexpected error.\n%v", r), "update-processing")
		}
	}()

	b.dumpUpdate(update)

	if !b.dispatchUpdate(ctx, update) {
		b.logger.Info("Unhandled update")
		b.metrics.IncrementUnhandled()
	}
}

// dispatchUpdate routes the update to a handler and reports whether any
// handler claimed it.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update) bool {
	switch {
	case update.ChatJoinRequest != nil:
		b.handleJoinRequest(ctx, fromTelegramJoinRequest(update.ChatJoinRequest))
		return true
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	default:
		return false
	}
}

// timestampLabel generates an ISO-8601 timestamp with UTC offset
func timestampLabel() string {
	return time.Now().UTC().Format(time.RFC3339)
}
