package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/groupinviter/groupinviterbot/internal/models"
)

// UserStore persists Telegram user snapshots in PostgreSQL.
type UserStore struct {
	db *sql.DB
}

// New opens a PostgreSQL connection pool and verifies it.
func New(databaseURL string) (*UserStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &UserStore{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests.
func NewWithDB(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Close closes the database connection
func (s *UserStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the users table and supporting index. Safe to call on
// every process start.
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			first_name TEXT,
			last_name TEXT,
			username TEXT,
			phone_number TEXT,
			language_code TEXT,
			is_premium BOOLEAN DEFAULT FALSE,
			is_bot BOOLEAN NOT NULL DEFAULT FALSE,
			joined_chat_id BIGINT,
			user_chat_id BIGINT,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_joined_chat_id ON users (joined_chat_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// UpsertJoinedUser records the user behind an approved join request. On
// conflict every column except telegram_id and joined_at is overwritten;
// joined_at keeps the value from the first insert.
func (s *UserStore) UpsertJoinedUser(ctx context.Context, req models.JoinRequest, ts time.Time) error {
	query := `
INSERT INTO users (
	telegram_id, first_name, last_name, username, phone_number,
	language_code, is_premium, is_bot, joined_chat_id, user_chat_id,
	joined_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
ON CONFLICT (telegram_id) DO UPDATE SET
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	username = EXCLUDED.username,
	phone_number = EXCLUDED.phone_number,
	language_code = EXCLUDED.language_code,
	is_premium = EXCLUDED.is_premium,
	is_bot = EXCLUDED.is_bot,
	joined_chat_id = EXCLUDED.joined_chat_id,
	user_chat_id = EXCLUDED.user_chat_id,
	updated_at = EXCLUDED.updated_at
`

	user := req.From
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		nullString(user.LastName),
		nullString(user.Username),
		nullString(user.PhoneNumber),
		nullString(user.LanguageCode),
		user.IsPremium,
		user.IsBot,
		req.ChatID,
		nullInt64(req.UserChatID),
		ts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}

	return nil
}

// nullString maps an empty string to SQL NULL.
func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

// nullInt64 maps zero to SQL NULL.
func nullInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: value != 0}
}
