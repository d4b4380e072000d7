package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/groupinviter/groupinviterbot/internal/bot"
	"github.com/groupinviter/groupinviterbot/internal/config"
	"github.com/groupinviter/groupinviterbot/internal/version"
)

const (
	defaultConfigPath = "/etc/groupinviter/bot-config.yaml"
	defaultLogLevel   = "info"
)

func main() {
	var (
		configPath  = flag.String("config", defaultConfigPath, "Path to configuration file")
		logLevel    = flag.String("log-level", defaultLogLevel, "Log level (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("Group Inviter Bot %s\n", version.GetFullVersion())
		return
	}

	// Setup logger
	logger := setupLogger(*logLevel)

	// Optional .env for local runs
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	// Load configuration: environment first, file as fallback
	cfg, err := config.LoadBotConfigFromEnv()
	if err != nil {
		cfg, err = config.LoadBotConfig(*configPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load configuration")
		}
	}

	// Create and start bot
	botInstance, err := bot.NewFromConfig(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create bot")
	}

	if err := botInstance.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start bot")
	}

	logger.Info("Group Inviter Bot started successfully")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down bot...")
	if err := botInstance.Stop(); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}
}

// setupLogger configures and returns a logger instance
func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// JSON for production, readable text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
