package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

type apiCall struct {
	method string
	params map[string]any
}

// fakeBotAPI answers every Bot API method with a minimal successful message.
type fakeBotAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	params := map[string]any{}
	_ = json.Unmarshal(body, &params)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], params: params})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":777,"type":"private"},"text":"ok"}}`)
}

func (f *fakeBotAPI) sent() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]apiCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newOfflineBot(t *testing.T) (*telebot.Bot, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := telebot.NewBot(telebot.Settings{Token: "test-token", URL: srv.URL, Offline: true})
	if err != nil {
		t.Fatalf("could not create bot: %v", err)
	}
	return b, api
}

type staticStatus app.PollerStatus

func (s staticStatus) Status() app.PollerStatus { return app.PollerStatus(s) }

func messageContext(b *telebot.Bot, chatID int64, text string) telebot.Context {
	return b.NewContext(telebot.Update{Message: &telebot.Message{
		Chat: &telebot.Chat{ID: chatID, Type: telebot.ChatPrivate},
		Text: text,
	}})
}

func TestSendMessageTargetsChat(t *testing.T) {
	b, api := newOfflineBot(t)
	adapter := NewTelebotAdapter(b, 10)

	if err := adapter.SendMessage(context.Background(), 777, "hello", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := api.sent()
	if len(calls) != 1 || calls[0].method != "sendMessage" {
		t.Fatalf("expected one sendMessage call, got %+v", calls)
	}
	if calls[0].params["chat_id"] != "777" || calls[0].params["text"] != "hello" {
		t.Fatalf("unexpected params: %+v", calls[0].params)
	}
}

func TestSendMessageRespectsCancelledContext(t *testing.T) {
	b, api := newOfflineBot(t)
	adapter := NewTelebotAdapter(b, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := adapter.SendMessage(ctx, 777, "hello", nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(api.sent()) != 0 {
		t.Fatalf("no request may be made after cancellation")
	}
}

func TestNewTelebotAdapterDefaultsRate(t *testing.T) {
	a := NewTelebotAdapter(nil, 0)
	if a.limiter.Burst() != 1 || float64(a.limiter.Limit()) != 1 {
		t.Fatalf("unexpected limiter: limit=%v burst=%d", a.limiter.Limit(), a.limiter.Burst())
	}
}

func TestStatusCommandRepliesWithReport(t *testing.T) {
	b, api := newOfflineBot(t)
	logger, _ := test.NewNullLogger()
	h := statusHandler(777, staticStatus{PreviousStatus: homework.StatusApproved, LastHomework: "task1"}, nil, logrus.NewEntry(logger))

	if err := h(messageContext(b, 777, "/status")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := api.sent()
	if len(calls) != 1 {
		t.Fatalf("expected one reply, got %d", len(calls))
	}
	text, _ := calls[0].params["text"].(string)
	if !strings.Contains(text, "Последний статус: approved (task1)") {
		t.Fatalf("unexpected reply %q", text)
	}
}

func TestCommandsRefuseForeignChats(t *testing.T) {
	b, api := newOfflineBot(t)
	logger, hook := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	for _, h := range []telebot.HandlerFunc{
		startHandler(777, entry),
		statusHandler(777, staticStatus{}, nil, entry),
	} {
		if err := h(messageContext(b, 42, "/status")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for _, c := range api.sent() {
		if text, _ := c.params["text"].(string); !strings.Contains(text, "только в настроенном чате") {
			t.Fatalf("expected refusal, got %q", text)
		}
		if c.params["chat_id"] != "42" {
			t.Fatalf("refusal should go back to the sender chat, got %v", c.params["chat_id"])
		}
	}
	if len(hook.AllEntries()) != 2 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected two warnings, got %d entries", len(hook.AllEntries()))
	}
}
