package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homework_status_bot/internal/domain/journal"
)

var ErrJournalDisabled = fmt.Errorf("notification journal is disabled")

const postgresJournalSchema = `CREATE TABLE IF NOT EXISTS notification_journal (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT    NOT NULL,
	chat_id    BIGINT  NOT NULL,
	message    TEXT    NOT NULL,
	delivered  BOOLEAN NOT NULL,
	send_error TEXT,
	created_at BIGINT  NOT NULL
)`

const sqliteJournalSchema = `CREATE TABLE IF NOT EXISTS notification_journal (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT    NOT NULL,
	chat_id    INTEGER NOT NULL,
	message    TEXT    NOT NULL,
	delivered  BOOLEAN NOT NULL,
	send_error TEXT,
	created_at INTEGER NOT NULL
)`

// SQLJournalRepository stores journal entries in postgres or sqlite.
// created_at is kept as Unix milliseconds so both drivers share one query set.
type SQLJournalRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLJournalRepository runs the idempotent migration and returns the repository.
func NewSQLJournalRepository(ctx context.Context, db *sql.DB, driver string) (*SQLJournalRepository, error) {
	r := &SQLJournalRepository{db: db, driver: driver}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLJournalRepository) migrate(ctx context.Context) error {
	schema := sqliteJournalSchema
	if r.driver == DriverPostgres {
		schema = postgresJournalSchema
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error migrating notification journal: %w", err)
	}
	return nil
}

func (r *SQLJournalRepository) Record(ctx context.Context, e *journal.Entry) error {
	if r == nil || r.db == nil {
		return ErrJournalDisabled
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := r.rebind(`INSERT INTO notification_journal (kind, chat_id, message, delivered, send_error, created_at)
               VALUES (?, ?, ?, ?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowContext(ctx, query,
		string(e.Kind), e.ChatID, e.Message, e.Delivered, e.SendError, e.CreatedAt.UnixMilli(),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("error recording journal entry: %w", err)
	}
	return nil
}

func (r *SQLJournalRepository) ListRecent(ctx context.Context, limit int) ([]*journal.Entry, error) {
	if r == nil || r.db == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		return nil, nil
	}

	query := r.rebind(`SELECT id, kind, chat_id, message, delivered, send_error, created_at
               FROM notification_journal
               ORDER BY id DESC
               LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*journal.Entry
	for rows.Next() {
		var (
			e         journal.Entry
			kind      string
			createdMS int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.ChatID, &e.Message, &e.Delivered, &e.SendError, &createdMS); err != nil {
			return nil, fmt.Errorf("error scanning journal entry: %w", err)
		}
		e.Kind = journal.EntryKind(kind)
		e.CreatedAt = time.UnixMilli(createdMS)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

// rebind turns '?' placeholders into '$n' for postgres.
func (r *SQLJournalRepository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
