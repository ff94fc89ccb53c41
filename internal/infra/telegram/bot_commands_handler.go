// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/journal"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const recentJournalEntries = 5

// StatusSource exposes the poller state to bot commands.
type StatusSource interface {
	Status() app.PollerStatus
}

// RegisterBotCommands wires /start and /status. Both answer only in the configured chat.
func RegisterBotCommands(
	b *telebot.Bot,
	chatID int64,
	poller StatusSource,
	journalRepo journal.Repository, // may be nil
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "commands")
	b.Handle("/start", startHandler(chatID, logger))
	b.Handle("/status", statusHandler(chatID, poller, journalRepo, logger))
}

func startHandler(chatID int64, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := logger.WithFields(logrus.Fields{"command": "/start", "chat_id": c.Chat().ID})
		if c.Chat().ID != chatID {
			logCtx.Warn("Command from unknown chat")
			return c.Send("Этот бот работает только в настроенном чате.")
		}
		logCtx.Info("Processing /start command")
		return c.Send("Привет! Я слежу за статусом проверки домашних работ и сообщу, когда он изменится. /status - текущее состояние.")
	}
}

func statusHandler(chatID int64, poller StatusSource, journalRepo journal.Repository, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := logger.WithFields(logrus.Fields{"command": "/status", "chat_id": c.Chat().ID})
		if c.Chat().ID != chatID {
			logCtx.Warn("Command from unknown chat")
			return c.Send("Этот бот работает только в настроенном чате.")
		}
		logCtx.Info("Processing /status command")

		var recent []*journal.Entry
		if journalRepo != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			entries, err := journalRepo.ListRecent(ctx, recentJournalEntries)
			if err != nil {
				logCtx.WithError(err).Error("Failed to read notification journal")
			} else {
				recent = entries
			}
		}

		return c.Send(app.FormatStatusReport(poller.Status(), recent))
	}
}
