package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"homework_status_bot/internal/domain/journal"
)

func setupTestJournal(t *testing.T) *SQLJournalRepository {
	t.Helper()
	db, err := NewConnection(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLJournalRepository(context.Background(), db, DriverSQLite)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return repo
}

func TestJournalRecordAndListRecent(t *testing.T) {
	repo := setupTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	entries := []*journal.Entry{
		{Kind: journal.EntryKindStatus, ChatID: 777, Message: "first", Delivered: true, CreatedAt: base},
		{Kind: journal.EntryKindError, ChatID: 777, Message: "second", SendError: sql.NullString{String: "chat not found", Valid: true}, CreatedAt: base.Add(time.Minute)},
		{Kind: journal.EntryKindStatus, ChatID: 777, Message: "third", Delivered: true, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if e.ID == 0 {
			t.Fatalf("expected id to be assigned")
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Message != "third" || recent[1].Message != "second" {
		t.Fatalf("expected newest first, got %q, %q", recent[0].Message, recent[1].Message)
	}

	failed := recent[1]
	if failed.Delivered || !failed.SendError.Valid || failed.SendError.String != "chat not found" {
		t.Fatalf("unexpected failed entry: %+v", failed)
	}
	if failed.Kind != journal.EntryKindError || failed.ChatID != 777 {
		t.Fatalf("unexpected kind/chat: %+v", failed)
	}
	if !failed.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected created_at %s, got %s", base.Add(time.Minute), failed.CreatedAt)
	}
	if !recent[0].Delivered || recent[0].SendError.Valid {
		t.Fatalf("unexpected delivered entry: %+v", recent[0])
	}
}

func TestJournalRecordDefaultsCreatedAt(t *testing.T) {
	repo := setupTestJournal(t)
	e := &journal.Entry{Kind: journal.EntryKindStatus, ChatID: 1, Message: "m", Delivered: true}

	if err := repo.Record(context.Background(), e); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if e.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}
}

func TestJournalListRecentEmptyAndZeroLimit(t *testing.T) {
	repo := setupTestJournal(t)

	recent, err := repo.ListRecent(context.Background(), 5)
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected empty result, got %v, %v", recent, err)
	}
	recent, err = repo.ListRecent(context.Background(), 0)
	if err != nil || recent != nil {
		t.Fatalf("expected nil for zero limit, got %v, %v", recent, err)
	}
}

func TestJournalMigrationIsIdempotent(t *testing.T) {
	repo := setupTestJournal(t)
	if err := repo.migrate(context.Background()); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestNilJournalIsDisabled(t *testing.T) {
	var repo *SQLJournalRepository
	if err := repo.Record(context.Background(), &journal.Entry{}); !errors.Is(err, ErrJournalDisabled) {
		t.Fatalf("expected ErrJournalDisabled, got %v", err)
	}
	if _, err := repo.ListRecent(context.Background(), 1); !errors.Is(err, ErrJournalDisabled) {
		t.Fatalf("expected ErrJournalDisabled, got %v", err)
	}
}

func TestRebindForPostgres(t *testing.T) {
	pg := &SQLJournalRepository{driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind: %s", got)
	}
	lite := &SQLJournalRepository{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite queries must be untouched, got %s", got)
	}
}

func TestNewConnectionRejectsUnknownDriver(t *testing.T) {
	if _, err := NewConnection("mongo", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
