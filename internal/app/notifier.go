// internal/app/notifier.go
package app

import (
	"context"
	"database/sql"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/journal"
	domainTelegram "homework_status_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a text message to the configured destination.
type Notifier interface {
	Notify(ctx context.Context, kind journal.EntryKind, message string) error
}

// TelegramNotifier sends notifications to a single Telegram chat and journals every attempt.
type TelegramNotifier struct {
	client  domainTelegram.Client
	chatID  int64
	journal journal.Repository // optional
	logger  *logrus.Entry
	now     func() time.Time
}

func NewTelegramNotifier(client domainTelegram.Client, chatID int64, repo journal.Repository, logger *logrus.Entry) *TelegramNotifier {
	return &TelegramNotifier{
		client:  client,
		chatID:  chatID,
		journal: repo,
		logger:  logger,
		now:     time.Now,
	}
}

// Notify sends message. A failed send is logged and returned as a notify error;
// callers must not abort on it.
func (n *TelegramNotifier) Notify(ctx context.Context, kind journal.EntryKind, message string) error {
	logCtx := n.logger.WithFields(logrus.Fields{"chat_id": n.chatID, "kind": kind})

	entry := &journal.Entry{
		Kind:      kind,
		ChatID:    n.chatID,
		Message:   message,
		CreatedAt: n.now(),
	}

	sendErr := n.client.SendMessage(ctx, n.chatID, message, nil)
	if sendErr != nil {
		logCtx.WithError(sendErr).Error("Бот не смог отправить сообщение")
		entry.SendError = sql.NullString{String: sendErr.Error(), Valid: true}
	} else {
		entry.Delivered = true
		logCtx.Infof("Бот отправил сообщение: %s", message)
	}

	n.record(ctx, entry)

	if sendErr != nil {
		return homework.WrapError(homework.KindNotify, sendErr, "не удалось отправить сообщение")
	}
	return nil
}

func (n *TelegramNotifier) record(ctx context.Context, entry *journal.Entry) {
	if n.journal == nil {
		return
	}
	if err := n.journal.Record(ctx, entry); err != nil {
		n.logger.WithError(err).Warn("Failed to write notification journal entry")
	}
}
