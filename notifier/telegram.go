// Package notifier sends the optional post-warm top-picks digest.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"props_edge_backend/models"
	"props_edge_backend/services/scan"
)

// Telegram sends digests via the Telegram Bot API. Constructed only when a
// bot token and chat id are configured; a nil *Telegram disables the
// digest.
type Telegram struct {
	bot    *bot.Bot
	chatID string
	log    *logrus.Logger
}

// NewTelegram creates a digest sender, or (nil, nil) when credentials are
// absent.
func NewTelegram(token, chatID string, log *logrus.Logger) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, nil
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID, log: log}, nil
}

// ScanFilters returns the fixed filters the digest scans with.
func (t *Telegram) ScanFilters() scan.Filters {
	return scan.Filters{Limit: 5, MinEdge: 0.02, MinTrend: 0.55, Events: 8}
}

// SendTopPicks formats and sends one league's digest, retrying with
// exponential backoff.
func (t *Telegram) SendTopPicks(ctx context.Context, league string, picks []models.Pick) error {
	return t.sendWithRetry(ctx, FormatTopPicks(league, picks), 2)
}

func (t *Telegram) sendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    t.chatID,
			Text:      text,
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err == nil {
			return nil
		}
		lastErr = err
		backoff := time.Duration(1<<uint(i)) * time.Second
		t.log.WithError(err).WithFields(logrus.Fields{"attempt": i + 1, "backoff": backoff.String()}).
			Warn("telegram send failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
