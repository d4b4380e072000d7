package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// BotConfig конфигурация бота
type BotConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig конфигурация Telegram бота
type TelegramConfig struct {
	Token string `yaml:"token"`
	// ParseMode режим разметки исходящих сообщений (по умолчанию HTML)
	ParseMode string `yaml:"parse_mode"`
	// AdminChatID чат администратора для служебных уведомлений (0 = отключено)
	AdminChatID int64 `yaml:"admin_chat_id"`
}

// DatabaseConfig конфигурация базы данных
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// KafkaConfig конфигурация экспорта событий в Kafka
type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	Compression  string   `yaml:"compression"`
	MaxAttempts  int      `yaml:"max_attempts"`
	BatchSize    int      `yaml:"batch_size"`
	RequiredAcks int      `yaml:"required_acks"`
}

// MetricsConfig конфигурация HTTP-сервера метрик
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LoggingConfig конфигурация логирования
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadBotConfig загружает конфигурацию бота из YAML-файла
func LoadBotConfig(filepath string) (*BotConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %v", err)
	}

	var config BotConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("не удалось парсить конфигурацию: %v", err)
	}

	config.applyDefaults()

	// Валидация конфигурации
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %v", err)
	}

	return &config, nil
}

// LoadBotConfigFromEnv загружает конфигурацию из переменных окружения
func LoadBotConfigFromEnv() (*BotConfig, error) {
	telegramToken := os.Getenv("TELEGRAM_TOKEN")
	databaseURL := os.Getenv("DATABASE_URL")

	if telegramToken == "" || databaseURL == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	config := &BotConfig{
		Telegram: TelegramConfig{
			Token:     telegramToken,
			ParseMode: os.Getenv("TELEGRAM_PARSE_MODE"),
		},
		Database: DatabaseConfig{
			URL: databaseURL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if adminStr := os.Getenv("ADMIN_CHAT_ID"); adminStr != "" {
		adminID, err := strconv.ParseInt(adminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный ADMIN_CHAT_ID: %v", err)
		}
		config.Telegram.AdminChatID = adminID
	}

	config.Kafka = kafkaConfigFromEnv()
	config.Metrics = metricsConfigFromEnv()
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %v", err)
	}

	return config, nil
}

// kafkaConfigFromEnv читает настройки Kafka из переменных окружения
func kafkaConfigFromEnv() KafkaConfig {
	var cfg KafkaConfig

	enabled := os.Getenv("KAFKA_ENABLED")
	if enabled != "true" && enabled != "1" {
		return cfg
	}
	cfg.Enabled = true

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Brokers = strings.Split(brokers, ",")
	}
	cfg.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Compression = os.Getenv("KAFKA_COMPRESSION")
	cfg.MaxAttempts = intFromEnv("KAFKA_MAX_ATTEMPTS", 0)
	cfg.BatchSize = intFromEnv("KAFKA_BATCH_SIZE", 0)
	cfg.RequiredAcks = intFromEnv("KAFKA_REQUIRED_ACKS", 1)

	return cfg
}

// metricsConfigFromEnv читает настройки метрик из переменных окружения
func metricsConfigFromEnv() MetricsConfig {
	var cfg MetricsConfig

	enabled := os.Getenv("METRICS_ENABLED")
	if enabled != "true" && enabled != "1" {
		return cfg
	}
	cfg.Enabled = true
	cfg.Host = os.Getenv("METRICS_HOST")
	cfg.Port = intFromEnv("METRICS_PORT", 0)

	return cfg
}

func intFromEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// applyDefaults подставляет значения по умолчанию
func (c *BotConfig) applyDefaults() {
	if c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = "HTML"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			c.Kafka.Brokers = []string{"localhost:9092"}
		}
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = "groupinviter.joins"
		}
		if c.Kafka.Compression == "" {
			c.Kafka.Compression = "snappy"
		}
		if c.Kafka.MaxAttempts == 0 {
			c.Kafka.MaxAttempts = 3
		}
		if c.Kafka.BatchSize == 0 {
			c.Kafka.BatchSize = 1
		}
	}
	if c.Metrics.Enabled {
		if c.Metrics.Host == "" {
			c.Metrics.Host = "127.0.0.1"
		}
		if c.Metrics.Port == 0 {
			c.Metrics.Port = 8000
		}
	}
}

// validate валидирует конфигурацию бота
func (c *BotConfig) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("токен Telegram бота не может быть пустым")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("строка подключения к базе данных не может быть пустой")
	}
	if c.Telegram.AdminChatID < 0 {
		return fmt.Errorf("admin_chat_id не может быть отрицательным")
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("некорректный порт сервера метрик: %d", c.Metrics.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("список брокеров Kafka не может быть пустым")
	}
	return nil
}
