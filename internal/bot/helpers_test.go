package bot

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/groupinviter/groupinviterbot/internal/config"
	"github.com/groupinviter/groupinviterbot/internal/models"
)

const testSelfID int64 = 1000

type sentMessage struct {
	ChatID    int64
	Text      string
	ParseMode string
}

// fakeTelegramAPI records outbound traffic and fails on demand.
type fakeTelegramAPI struct {
	mu sync.Mutex

	sent     []sentMessage
	sendErrs map[int64]error

	requests      []tgbotapi.Chattable
	requestErr    error
	requestResult json.RawMessage
}

func newFakeTelegramAPI() *fakeTelegramAPI {
	return &fakeTelegramAPI{sendErrs: make(map[int64]error)}
}

func (f *fakeTelegramAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeTelegramAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}

	f.sent = append(f.sent, sentMessage{
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		ParseMode: msg.ParseMode,
	})

	if err := f.sendErrs[msg.ChatID]; err != nil {
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegramAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}

	result := f.requestResult
	if result == nil {
		result = json.RawMessage(`true`)
	}
	return &tgbotapi.APIResponse{Ok: true, Result: result}, nil
}

func (f *fakeTelegramAPI) StopReceivingUpdates() {}

func (f *fakeTelegramAPI) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTelegramAPI) sentTo(chatID int64) []sentMessage {
	var out []sentMessage
	for _, msg := range f.sentMessages() {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeTelegramAPI) approvalRequests() []tgbotapi.ApproveChatJoinRequestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.ApproveChatJoinRequestConfig
	for _, req := range f.requests {
		if approval, ok := req.(tgbotapi.ApproveChatJoinRequestConfig); ok {
			out = append(out, approval)
		}
	}
	return out
}

// fakeUserStore records upserts and fails on demand.
type fakeUserStore struct {
	mu sync.Mutex

	upserts     []models.JoinRequest
	upsertErr   error
	schemaCalls int
	schemaErr   error
}

func (s *fakeUserStore) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaCalls++
	return s.schemaErr
}

func (s *fakeUserStore) UpsertJoinedUser(ctx context.Context, req models.JoinRequest, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, req)
	return nil
}

func (s *fakeUserStore) Close() error { return nil }

func (s *fakeUserStore) upsertedRequests() []models.JoinRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.JoinRequest(nil), s.upserts...)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu sync.Mutex

	events []interface{}
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type testBot struct {
	bot     *Bot
	api     *fakeTelegramAPI
	store   *fakeUserStore
	metrics *InMemoryMetrics
	logHook *test.Hook
}

func newTestBot(t *testing.T, adminChatID int64) *testBot {
	t.Helper()

	api := newFakeTelegramAPI()
	store := &fakeUserStore{}
	metrics := NewInMemoryMetrics()

	logrusLogger, hook := test.NewNullLogger()
	logrusLogger.SetLevel(logrus.DebugLevel)

	b, err := New(BotOptions{
		Config: &config.BotConfig{
			Telegram: config.TelegramConfig{
				Token:       "test-token",
				ParseMode:   "HTML",
				AdminChatID: adminChatID,
			},
			Database: config.DatabaseConfig{URL: "postgres://localhost/test"},
		},
		Logger:      NewStructuredLogger(logrusLogger),
		TelegramAPI: api,
		Users:       store,
		Metrics:     metrics,
		SelfID:      testSelfID,
	})
	require.NoError(t, err)

	return &testBot{
		bot:     b,
		api:     api,
		store:   store,
		metrics: metrics,
		logHook: hook,
	}
}

// botInvite returns an invite link created by the bot's own identity.
func botInvite() *models.InviteLink {
	return &models.InviteLink{
		URL:                "https://t.me/+test",
		Creator:            models.TelegramUser{ID: testSelfID, IsBot: true},
		CreatesJoinRequest: true,
	}
}
