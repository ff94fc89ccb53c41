package app

import (
	"context"
	"encoding/json"
	"testing"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/journal"

	"gopkg.in/telebot.v3"
)

type fetchResult struct {
	payload homework.Payload
	err     error
}

// stubStatusClient replays results in order and repeats the last one.
type stubStatusClient struct {
	results []fetchResult
	calls   int
	froms   []int64
}

func (s *stubStatusClient) FetchStatuses(_ context.Context, from int64) (homework.Payload, error) {
	s.froms = append(s.froms, from)
	r := s.results[len(s.results)-1]
	if s.calls < len(s.results) {
		r = s.results[s.calls]
	}
	s.calls++
	return r.payload, r.err
}

type sentNotification struct {
	kind    journal.EntryKind
	message string
}

type stubNotifier struct {
	sent    []sentNotification
	ctxErrs []error
	err     error
}

func (s *stubNotifier) Notify(ctx context.Context, kind journal.EntryKind, message string) error {
	s.sent = append(s.sent, sentNotification{kind: kind, message: message})
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func (s *stubNotifier) byKind(kind journal.EntryKind) []string {
	var out []string
	for _, n := range s.sent {
		if n.kind == kind {
			out = append(out, n.message)
		}
	}
	return out
}

type sentMessage struct {
	chatID int64
	text   string
}

type stubTelegramClient struct {
	sent []sentMessage
	err  error
}

func (s *stubTelegramClient) SendMessage(_ context.Context, chatID int64, text string, _ *telebot.SendOptions) error {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	return s.err
}

type stubJournal struct {
	entries []*journal.Entry
	err     error
}

func (s *stubJournal) Record(_ context.Context, e *journal.Entry) error {
	if s.err != nil {
		return s.err
	}
	e.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubJournal) ListRecent(_ context.Context, limit int) ([]*journal.Entry, error) {
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[len(s.entries)-limit:], s.err
}

func payload(t *testing.T, body string) fetchResult {
	t.Helper()
	var p homework.Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("bad fixture %s: %v", body, err)
	}
	return fetchResult{payload: p}
}
