package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Config конфигурация Kafka producer
type Config struct {
	Brokers      []string      // Список Kafka брокеров
	Topic        string        // Топик для событий
	Compression  string        // Тип сжатия: "none", "gzip", "snappy", "lz4", "zstd"
	MaxAttempts  int           // Максимальное количество попыток отправки
	BatchSize    int           // Размер батча сообщений
	BatchTimeout time.Duration // Таймаут для батча
	RequiredAcks int           // -1 = all, 0 = none, 1 = leader
	WriteTimeout time.Duration // Таймаут записи
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Brokers:      []string{"localhost:9092"},
		Topic:        "groupinviter.joins",
		Compression:  "snappy",
		MaxAttempts:  3,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: 1,
		WriteTimeout: 10 * time.Second,
	}
}

// Producer отправляет JSON-события в Kafka
type Producer struct {
	writer *kafka.Writer
	config Config
	logger *logrus.Logger
}

// NewProducer создает новый Kafka producer
func NewProducer(cfg Config, logger *logrus.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers list is empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is empty")
	}

	if logger == nil {
		logger = logrus.New()
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		ReadTimeout:  cfg.WriteTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: cfg.RequiredAcks,
		Async:        false,
	})

	writer.Compression = compressionCodec(cfg.Compression)
	writer.AllowAutoTopicCreation = true

	logger.WithFields(logrus.Fields{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
	}).Info("Kafka producer initialized")

	return &Producer{
		writer: writer,
		config: cfg,
		logger: logger,
	}, nil
}

// compressionCodec сопоставляет имя алгоритма сжатия с кодеком
func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0) // None
	}
}

// Publish сериализует событие в JSON и отправляет его с указанным ключом
func (p *Producer) Publish(ctx context.Context, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"topic": p.config.Topic,
			"key":   key,
			"error": err,
		}).Warn("Не удалось отправить событие в Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic": p.config.Topic,
		"key":   key,
		"size":  len(payload),
	}).Debug("Событие отправлено в Kafka")

	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
