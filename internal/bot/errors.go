package bot

import (
	"errors"
	"fmt"
)

// BotError represents a structured error with context
type BotError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *BotError) Is(target error) bool {
	if target == nil {
		return false
	}

	if botErr, ok := target.(*BotError); ok {
		return e.Code == botErr.Code
	}

	return errors.Is(e.Cause, target)
}

// NewBotError creates a new BotError
func NewBotError(code, message string, cause error) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeDatabase   = "DATABASE_ERROR"
	ErrCodeTelegram   = "TELEGRAM_ERROR"
	ErrCodeKafka      = "KAFKA_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Helper functions to create common errors
func NewValidationError(message string, cause error) *BotError {
	return NewBotError(ErrCodeValidation, message, cause)
}

func NewDatabaseError(message string, cause error) *BotError {
	return NewBotError(ErrCodeDatabase, message, cause)
}

func NewTelegramError(message string, cause error) *BotError {
	return NewBotError(ErrCodeTelegram, message, cause)
}

func NewKafkaError(message string, cause error) *BotError {
	return NewBotError(ErrCodeKafka, message, cause)
}

func NewInternalError(message string, cause error) *BotError {
	return NewBotError(ErrCodeInternal, message, cause)
}
