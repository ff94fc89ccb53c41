package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const defaultIdentityRetry = 30 * time.Second

// RunBotCommands serves command updates until ctx is cancelled.
// The bot is built offline, so its identity is fetched here and retried while
// Telegram is unreachable; an outage delays commands but never stops the process.
func RunBotCommands(ctx context.Context, b *telebot.Bot, retry time.Duration, logger *logrus.Entry) {
	if retry <= 0 {
		retry = defaultIdentityRetry
	}
	for {
		err := resolveIdentity(b)
		if err == nil {
			break
		}
		logger.WithError(err).WithField("retry_in", retry.String()).Warn("Could not reach Telegram, bot commands are delayed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
	logger.WithField("username", b.Me.Username).Info("Serving bot commands")

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Start()
	}()

	<-ctx.Done()
	b.Stop()
	<-done
	logger.Info("Bot command polling stopped")
}

// resolveIdentity fills b.Me, which command routing needs for "/cmd@botname".
func resolveIdentity(b *telebot.Bot) error {
	data, err := b.Raw("getMe", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Result *telebot.User `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode getMe: %w", err)
	}
	if resp.Result == nil {
		return fmt.Errorf("getMe returned no user")
	}
	b.Me = resp.Result
	return nil
}
