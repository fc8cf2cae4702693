// Package notify fans a new disclosure out to all active subscribers.
package notify

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"idx-disclosure-bot/internal/models"
	"idx-disclosure-bot/internal/telegram"
)

// Sender delivers one formatted message to one chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Registry is the subscriber state mutated on permanent delivery failure.
type Registry interface {
	DeactivateSubscriber(ctx context.Context, chatID int64) error
}

// Report aggregates the outcome of one fanout.
type Report struct {
	Succeeded int
	Failed    int
}

// Notifier broadcasts disclosures with bounded concurrency. Failure handling
// is per recipient: a permanently unreachable chat is deactivated in the
// registry, any other failure is logged and the chat stays active. A single
// bad recipient never aborts delivery to the rest.
type Notifier struct {
	sender      Sender
	registry    Registry
	logger      zerolog.Logger
	concurrency int
}

// New creates a notifier. concurrency bounds parallel sends; values below 1
// fall back to sequential delivery.
func New(sender Sender, registry Registry, logger zerolog.Logger, concurrency int) *Notifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Notifier{
		sender:      sender,
		registry:    registry,
		logger:      logger,
		concurrency: concurrency,
	}
}

// NotifyAll delivers the disclosure to every chat in the snapshot. The
// recipient set is fixed by the caller before the call; registry changes made
// during the fanout do not alter it.
func (n *Notifier) NotifyAll(ctx context.Context, d *models.Disclosure, chatIDs []int64) Report {
	if len(chatIDs) == 0 {
		n.logger.Info().Str("disclosure_id", d.ID).Msg("No active subscribers")
		return Report{}
	}

	text := FormatDisclosure(d)

	var succeeded, failed atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(n.concurrency)
	for _, chatID := range chatIDs {
		chatID := chatID
		g.Go(func() error {
			err := n.sender.SendMessage(ctx, chatID, text)
			if err == nil {
				succeeded.Add(1)
				return nil
			}

			failed.Add(1)
			if telegram.IsBlocked(err) {
				n.logger.Info().
					Int64("chat_id", chatID).
					Str("disclosure_id", d.ID).
					Msg("Chat unreachable, deactivating subscriber")
				if derr := n.registry.DeactivateSubscriber(ctx, chatID); derr != nil {
					n.logger.Error().Err(derr).Int64("chat_id", chatID).Msg("Failed to deactivate subscriber")
				}
				return nil
			}

			n.logger.Warn().
				Err(err).
				Int64("chat_id", chatID).
				Str("disclosure_id", d.ID).
				Msg("Delivery failed, subscriber left active")
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	report := Report{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	n.logger.Info().
		Str("disclosure_id", d.ID).
		Str("stock", d.StockCode).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Fanout completed")
	return report
}
