package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/journal"
	"homework_status_bot/internal/infra/config"
	idb "homework_status_bot/internal/infra/database"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Startup gate: nothing touches the network without all credentials.
		logger.Log.WithError(err).Fatal("Could not load application configuration")
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"chat_id":       cfg.TelegramChatID,
		"poll_interval": cfg.PollInterval.String(),
		"journal":       cfg.JournalDriver,
	}).Info("Configuration loaded")

	var journalRepo journal.Repository
	if cfg.JournalDriver != "" {
		db, err := idb.NewConnection(cfg.JournalDriver, cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to journal database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		repo, err := idb.NewSQLJournalRepository(ctx, db, cfg.JournalDriver)
		cancel()
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not prepare notification journal")
		}
		journalRepo = repo
		mainLogger.Info("Notification journal initialized.")
	}

	botLogger := logger.Component("telebot")
	// Offline: no getMe at startup, so a Telegram outage cannot stop the process here.
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.TelegramToken,
		Offline: true,
		Poller:  &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logCtx := botLogger.WithError(err)
			if c != nil && c.Chat() != nil {
				logCtx = logCtx.WithField("chat_id", c.Chat().ID)
			}
			logCtx.Error("Telegram handler error")
		},
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	tgClient := telegram.NewTelebotAdapter(bot, cfg.TelegramRatePerSec)
	notifier := app.NewTelegramNotifier(tgClient, cfg.TelegramChatID, journalRepo, logger.Component("notifier"))

	statusClient := practicum.NewClient(practicum.Config{
		Endpoint: cfg.Endpoint,
		Token:    cfg.PracticumToken,
		Timeout:  cfg.HTTPTimeout,
		Logger:   logger.Component("practicum"),
	})
	poller := app.NewPoller(statusClient, notifier, logger.Component("poller"), cfg.PollLookback)

	pollScheduler := scheduler.NewPollScheduler(poller, logger.Component("scheduler"), cfg.PollInterval, cfg.CycleTimeout)
	pollScheduler.Start()

	commandsCtx, stopCommands := context.WithCancel(context.Background())
	commandsDone := make(chan struct{})
	if cfg.BotCommandsEnabled {
		telegramLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, cfg.TelegramChatID, poller, journalRepo, telegramLogger)
		go func() {
			defer close(commandsDone)
			telegram.RunBotCommands(commandsCtx, bot, 0, telegramLogger)
		}()
		mainLogger.Info("Bot command handlers registered.")
	} else {
		close(commandsDone)
	}

	mainLogger.Info("Application setup complete. Polling homework statuses...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	stopCommands()
	<-commandsDone
	pollScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
