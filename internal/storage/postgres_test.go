package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupinviter/groupinviterbot/internal/models"
)

func newMockStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(db), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_users_joined_chat_id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.EnsureSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	store, mock := newMockStore(t)

	for i := 0; i < 2; i++ {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_users_joined_chat_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnError(errors.New("connection lost"))

	err := store.EnsureSchema(context.Background())
	assert.Error(t, err)
}

func TestUpsertJoinedUser(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	req := models.JoinRequest{
		ChatID: -100200300,
		From: models.TelegramUser{
			ID:           42,
			FirstName:    "Ivan",
			LastName:     "Petrov",
			Username:     "ivanp",
			LanguageCode: "ru",
			IsPremium:    true,
		},
		UserChatID: 555,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			int64(42),
			"Ivan",
			sql.NullString{String: "Petrov", Valid: true},
			sql.NullString{String: "ivanp", Valid: true},
			sql.NullString{},
			sql.NullString{String: "ru", Valid: true},
			true,
			false,
			int64(-100200300),
			sql.NullInt64{Int64: 555, Valid: true},
			ts,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertJoinedUser(context.Background(), req, ts)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertJoinedUser_OptionalFieldsNull(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	req := models.JoinRequest{
		ChatID: -1,
		From:   models.TelegramUser{ID: 7, FirstName: "Ann"},
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			int64(7),
			"Ann",
			sql.NullString{},
			sql.NullString{},
			sql.NullString{},
			sql.NullString{},
			false,
			false,
			int64(-1),
			sql.NullInt64{},
			ts,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertJoinedUser(context.Background(), req, ts)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Applying the same upsert twice issues the identical statement both times;
// the ON CONFLICT clause leaves joined_at to the row's original insert.
func TestUpsertJoinedUser_IdempotentOnRetry(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	req := models.JoinRequest{
		ChatID: -5,
		From:   models.TelegramUser{ID: 42, FirstName: "Ivan"},
	}

	for i := 0; i < 2; i++ {
		mock.ExpectExec("ON CONFLICT \\(telegram_id\\) DO UPDATE").
			WithArgs(
				int64(42),
				"Ivan",
				sql.NullString{},
				sql.NullString{},
				sql.NullString{},
				sql.NullString{},
				false,
				false,
				int64(-5),
				sql.NullInt64{},
				ts,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	assert.NoError(t, store.UpsertJoinedUser(context.Background(), req, ts))
	assert.NoError(t, store.UpsertJoinedUser(context.Background(), req, ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertJoinedUser_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("constraint violation"))

	err := store.UpsertJoinedUser(context.Background(), models.JoinRequest{
		From: models.TelegramUser{ID: 42},
	}, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
}
