package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	tele "gopkg.in/telebot.v4"
)

type recordingSender struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *recordingSender) Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, strings.Join(recipients, ","))
	return s.err
}

func uintPtr(v uint) *uint { return &v }

func TestFanOutCollectsFailures(t *testing.T) {
	email := &recordingSender{}
	slackSender := &recordingSender{err: errors.New("webhook down")}

	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.ChannelEmail, email, 0))
	require.NoError(t, registry.Register(domain.ChannelSlack, slackSender, 0))
	require.NoError(t, registry.Register(domain.ChannelTelegram, &recordingSender{}, 0))

	subscriptions := []domain.Subscription{
		{
			ID:        1,
			User:      domain.User{Email: "a@x.io"},
			ProjectID: uintPtr(1),
			Channels: []domain.ChannelConfig{
				{Kind: domain.ChannelEmail},
				{Kind: domain.ChannelSlack},
			},
		},
		{
			ID:     2,
			User:   domain.User{Email: "b@x.io"},
			TeamID: uintPtr(3),
			Channels: []domain.ChannelConfig{
				{Kind: domain.ChannelEmail},
				{Kind: domain.ChannelTelegram},
			},
		},
	}

	dispatcher := NewDispatcher(registry, 4, time.Second, zerolog.Nop())
	report := dispatcher.FanOut(context.Background(), subscriptions, "digest")

	require.Len(t, report.Dispatches, 4)
	assert.Equal(t, 3, report.Succeeded())
	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.EqualValues(t, 1, failures[0].SubscriptionID)
	assert.Equal(t, domain.ChannelSlack, failures[0].Channel)
	assert.ElementsMatch(t, []string{"a@x.io", "b@x.io"}, email.calls)
}

func TestFanOutUnsupportedAndMalformed(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.ChannelEmail, &recordingSender{}, 0))

	subscriptions := []domain.Subscription{
		{ID: 1, ProjectID: uintPtr(1), Channels: []domain.ChannelConfig{{Kind: "pager"}}},
		{ID: 2, ProjectID: uintPtr(1), TeamID: uintPtr(2), Channels: []domain.ChannelConfig{{Kind: domain.ChannelEmail}}},
		{ID: 3, ProjectID: uintPtr(1), Channels: []domain.ChannelConfig{{Kind: domain.ChannelEmail}}},
		{ID: 4, ProjectID: uintPtr(1), Channels: []domain.ChannelConfig{{Kind: domain.ChannelTelegram}}},
	}

	report := NewDispatcher(registry, 2, time.Second, zerolog.Nop()).FanOut(context.Background(), subscriptions, "digest")
	require.Len(t, report.Dispatches, 4)
	assert.True(t, errcodes.IsKind(report.Dispatches[0].Err, errcodes.KindUnsupportedChannel))
	assert.EqualError(t, report.Dispatches[0].Err, "UNSUPPORTED_CHANNEL: unsupported notification channel: pager")
	assert.True(t, errcodes.IsKind(report.Dispatches[1].Err, errcodes.KindValidation))
	assert.NoError(t, report.Dispatches[2].Err)
	// telegram is a known kind without a registered sender
	assert.True(t, errcodes.IsKind(report.Dispatches[3].Err, errcodes.KindChannelUnavailable))
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("pager", &recordingSender{}, 0)
	assert.True(t, errcodes.IsKind(err, errcodes.KindUnsupportedChannel))
	_, ok := registry.lookup("pager")
	assert.False(t, ok)
}

func TestConfigInt64(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int64
		wantErr bool
	}{
		{"float", float64(-100123), -100123, false},
		{"fractional float", 1.5, 0, true},
		{"huge float", 1e30, 0, true},
		{"json number", json.Number("42"), 42, false},
		{"string", " 7 ", 7, false},
		{"bad string", "seven", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := configInt64(map[string]interface{}{"chat_id": tt.value}, "chat_id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := configInt64(map[string]interface{}{}, "chat_id")
	assert.EqualError(t, err, "chat_id is required")
}

func TestFanOutRespectsRateLimit(t *testing.T) {
	sender := &recordingSender{}
	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.ChannelEmail, sender, 20))

	channels := make([]domain.ChannelConfig, 0, 25)
	for i := 0; i < 25; i++ {
		channels = append(channels, domain.ChannelConfig{Kind: domain.ChannelEmail})
	}
	subscriptions := []domain.Subscription{{ID: 1, ProjectID: uintPtr(1), Channels: channels}}

	start := time.Now()
	report := NewDispatcher(registry, 8, 5*time.Second, zerolog.Nop()).FanOut(context.Background(), subscriptions, "digest")
	assert.Equal(t, 25, report.Succeeded())
	// burst of 20, the remaining 5 wait for tokens at 20/s
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestSlackSender(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSlackSender(time.Second)
	err := sender.Send(context.Background(), "hello", nil, map[string]interface{}{"webhook_url": server.URL})
	require.NoError(t, err)
	assert.Equal(t, "hello", payload["text"])

	err = sender.Send(context.Background(), "hello", nil, map[string]interface{}{})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))
}

func TestSlackSender_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewSlackSender(time.Second).Send(context.Background(), "hello", nil, map[string]interface{}{"webhook_url": server.URL})
	assert.True(t, errcodes.IsKind(err, errcodes.KindUpstream))
}

type fakeMailClient struct {
	messages []*mail.Msg
	err      error
}

func (c *fakeMailClient) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	c.messages = append(c.messages, messages...)
	return c.err
}

func TestEmailSender(t *testing.T) {
	client := &fakeMailClient{}
	sender := &EmailSender{client: client, from: "digest@example.com", subject: "Update"}

	require.NoError(t, sender.Send(context.Background(), "body", []string{"a@x.io"}, nil))
	require.Len(t, client.messages, 1)
	to, err := client.messages[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.io"}, to)

	require.NoError(t, sender.Send(context.Background(), "body", []string{"a@x.io"}, map[string]interface{}{"to": "ops@x.io"}))
	to, err = client.messages[1].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@x.io"}, to)

	err = sender.Send(context.Background(), "body", nil, nil)
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	client.err = errors.New("connection refused")
	err = sender.Send(context.Background(), "body", []string{"a@x.io"}, nil)
	assert.True(t, errcodes.IsKind(err, errcodes.KindUpstream))
}

type fakeBot struct {
	chats []int64
	texts []string
}

func (b *fakeBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	chat := to.(*tele.Chat)
	b.chats = append(b.chats, chat.ID)
	b.texts = append(b.texts, what.(string))
	return &tele.Message{ID: len(b.texts)}, nil
}

func TestTelegramSender(t *testing.T) {
	bot := &fakeBot{}
	sender := &TelegramSender{bot: bot}

	require.NoError(t, sender.Send(context.Background(), "hi", nil, map[string]interface{}{"chat_id": float64(-1001)}))
	require.NoError(t, sender.Send(context.Background(), "hi", nil, map[string]interface{}{"chat_id": "42"}))
	assert.Equal(t, []int64{-1001, 42}, bot.chats)

	err := sender.Send(context.Background(), "hi", nil, map[string]interface{}{})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sender.Send(ctx, "hi", nil, map[string]interface{}{"chat_id": 1})
	assert.True(t, errcodes.IsKind(err, errcodes.KindUpstream))
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))
	assert.Equal(t, []string{"line one", "line two"}, splitText("line one\nline two", 10))
	assert.Equal(t, []string{"abcde", "fghij"}, splitText("abcdefghij", 5))
}
