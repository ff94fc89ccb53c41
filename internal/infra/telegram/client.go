// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
// Sends are paced by a token bucket so bursts of notifications stay under Telegram limits.
type TelebotAdapter struct {
	bot     *telebot.Bot
	limiter *rate.Limiter
}

func NewTelebotAdapter(b *telebot.Bot, ratePerSec float64) *TelebotAdapter {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &TelebotAdapter{bot: b, limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(ctx context.Context, chatID int64, text string, options *telebot.SendOptions) error {
	if err := tba.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram send rate limit: %w", err)
	}
	if options == nil {
		options = &telebot.SendOptions{}
	}

	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	return err
}
