// Package bot implements the Telegram command surface: subscription
// management and on-demand queries over long-polled updates.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"idx-disclosure-bot/internal/models"
	"idx-disclosure-bot/internal/notify"
	"idx-disclosure-bot/internal/telegram"
)

const (
	updateTimeout = 50 * time.Second
	latestCount   = 5
)

// Client receives updates and sends replies.
type Client interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Store is the subscriber registry and disclosure history behind the
// command surface.
type Store interface {
	ActivateSubscriber(ctx context.Context, chatID int64, displayName string) error
	DeactivateSubscriber(ctx context.Context, chatID int64) error
	IsSubscribed(ctx context.Context, chatID int64) (bool, error)
	CountActiveSubscribers(ctx context.Context) (int, error)
	CountDisclosures(ctx context.Context) (int, error)
	LatestDisclosures(ctx context.Context, limit int) ([]models.Disclosure, error)
}

// Bot dispatches subscriber commands.
type Bot struct {
	client       Client
	store        Store
	logger       zerolog.Logger
	pollInterval time.Duration // reported by /stats
}

// New creates the command dispatcher.
func New(client Client, store Store, logger zerolog.Logger, pollInterval time.Duration) *Bot {
	return &Bot{
		client:       client,
		store:        store,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info().Msg("Command listener started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Command listener stopped")
			return
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, updateTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn().Err(err).Msg("Failed to fetch updates")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			b.handleMessage(ctx, u.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	command := msg.Text
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	command = strings.TrimSpace(command)

	chatID := msg.Chat.ID
	logger := b.logger.With().Int64("chat_id", chatID).Str("command", command).Logger()

	var err error
	switch command {
	case "/start":
		err = b.Subscribe(ctx, chatID, displayName(msg))
	case "/stop":
		err = b.Unsubscribe(ctx, chatID)
	case "/latest":
		err = b.sendLatest(ctx, chatID)
	case "/stats":
		err = b.sendStats(ctx, chatID)
	case "/help":
		err = b.client.SendMessage(ctx, chatID, helpMessage)
	default:
		return // ignore anything that is not a known command
	}

	if err != nil {
		logger.Warn().Err(err).Msg("Command handling failed")
		return
	}
	logger.Info().Msg("Command handled")
}

// Subscribe activates the chat and sends the welcome message.
func (b *Bot) Subscribe(ctx context.Context, chatID int64, name string) error {
	if err := b.store.ActivateSubscriber(ctx, chatID, name); err != nil {
		return fmt.Errorf("subscribe chat %d: %w", chatID, err)
	}
	return b.client.SendMessage(ctx, chatID, welcomeMessage)
}

// Unsubscribe deactivates the chat and sends the farewell message.
func (b *Bot) Unsubscribe(ctx context.Context, chatID int64) error {
	if err := b.store.DeactivateSubscriber(ctx, chatID); err != nil {
		return fmt.Errorf("unsubscribe chat %d: %w", chatID, err)
	}
	return b.client.SendMessage(ctx, chatID, farewellMessage)
}

// FetchLatest returns the most recent stored disclosures.
func (b *Bot) FetchLatest(ctx context.Context, n int) ([]models.Disclosure, error) {
	return b.store.LatestDisclosures(ctx, n)
}

// Stats describes the running system for the /stats command.
type Stats struct {
	ActiveSubscribers int
	TotalDisclosures  int
}

// CurrentStats collects the live counters.
func (b *Bot) CurrentStats(ctx context.Context) (Stats, error) {
	subscribers, err := b.store.CountActiveSubscribers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count subscribers: %w", err)
	}
	disclosures, err := b.store.CountDisclosures(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count disclosures: %w", err)
	}
	return Stats{ActiveSubscribers: subscribers, TotalDisclosures: disclosures}, nil
}

func (b *Bot) sendLatest(ctx context.Context, chatID int64) error {
	disclosures, err := b.FetchLatest(ctx, latestCount)
	if err != nil {
		return fmt.Errorf("fetch latest: %w", err)
	}
	if len(disclosures) == 0 {
		return b.client.SendMessage(ctx, chatID, "❌ Belum ada disclosure yang tercatat.")
	}

	for i, d := range disclosures {
		d := d
		if err := b.client.SendMessage(ctx, chatID, notify.FormatLatest(i+1, &d)); err != nil {
			return fmt.Errorf("send latest entry: %w", err)
		}
	}
	return nil
}

func (b *Bot) sendStats(ctx context.Context, chatID int64) error {
	stats, err := b.CurrentStats(ctx)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`📊 *Statistik Bot*

👥 Total Subscribers: *%d*
📋 Total Disclosures Tracked: *%d*
⏱️ Check Interval: *%d menit*

Bot aktif 24/7 memantau disclosure IDX!`,
		stats.ActiveSubscribers,
		stats.TotalDisclosures,
		int(b.pollInterval.Minutes()),
	)
	return b.client.SendMessage(ctx, chatID, text)
}

func displayName(msg *telegram.Message) string {
	if msg.From.Username != "" {
		return msg.From.Username
	}
	return msg.From.FirstName
}
