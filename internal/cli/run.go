package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"idx-disclosure-bot/internal/bot"
	"idx-disclosure-bot/internal/idx"
	"idx-disclosure-bot/internal/metrics"
	"idx-disclosure-bot/internal/notify"
	"idx-disclosure-bot/internal/poller"
	"idx-disclosure-bot/internal/telegram"
)

func newRunCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the polling daemon and Telegram command handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config.Telegram.BotToken == "" {
				return fmt.Errorf("telegram bot token not configured (set telegram.bot_token or BOT_TOKEN)")
			}

			m := metrics.New()
			tgClient := telegram.New(app.Config.Telegram.BotToken)
			source := idx.New(app.Logger)

			registry := &countingRegistry{
				store:   app.Store,
				dropped: m.SubscribersDropped,
			}
			notifier := notify.New(tgClient, registry, app.Logger, app.Config.Notify.Concurrency)

			p := poller.New(source, app.Store, notifier, m, app.Logger,
				app.Config.Poll.Interval, app.Config.Poll.FirstDelay)

			if once {
				added, err := p.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				app.Logger.Info().Int("new_disclosures", added).Msg("single poll cycle complete")
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			commandBot := bot.New(tgClient, app.Store, app.Logger, app.Config.Poll.Interval)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				p.Run(ctx)
				return nil
			})
			g.Go(func() error {
				commandBot.Run(ctx)
				return nil
			})
			if addr := app.Config.Metrics.Listen; addr != "" {
				g.Go(func() error {
					return m.Serve(ctx, addr)
				})
			}

			active, err := app.Store.CountActiveSubscribers(ctx)
			if err != nil {
				app.Logger.Warn().Err(err).Msg("failed to count subscribers at startup")
			}
			app.Logger.Info().
				Dur("interval", app.Config.Poll.Interval).
				Int("active_subscribers", active).
				Msg("idx disclosure bot started")

			if err := g.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			app.Logger.Info().Msg("idx disclosure bot stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single poll cycle and exit")
	return cmd
}

// countingRegistry wraps the store's subscriber deactivation so every
// drop triggered by the fanout shows up in the metrics.
type countingRegistry struct {
	store   notify.Registry
	dropped prometheus.Counter
}

func (c *countingRegistry) DeactivateSubscriber(ctx context.Context, chatID int64) error {
	if err := c.store.DeactivateSubscriber(ctx, chatID); err != nil {
		return err
	}
	c.dropped.Inc()
	return nil
}
