// Package poller drives the fetch-normalize-dedup-fanout cycle on a fixed
// interval.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"idx-disclosure-bot/internal/ingest"
	"idx-disclosure-bot/internal/metrics"
	"idx-disclosure-bot/internal/models"
	"idx-disclosure-bot/internal/notify"
)

// Source is the upstream collaborator producing raw announcement records.
type Source interface {
	FetchRawItems(ctx context.Context) ([]ingest.RawItem, error)
}

// Store is the persistence used by a poll cycle.
type Store interface {
	InsertIfNew(ctx context.Context, d *models.Disclosure) (bool, error)
	MarkNotified(ctx context.Context, id string) error
	ListActiveSubscribers(ctx context.Context) ([]int64, error)
	CountActiveSubscribers(ctx context.Context) (int, error)
}

// Fanout broadcasts one disclosure to a recipient snapshot.
type Fanout interface {
	NotifyAll(ctx context.Context, d *models.Disclosure, chatIDs []int64) notify.Report
}

// Poller runs poll cycles forever. A time.Ticker carries at most one pending
// tick, so a cycle outlasting the interval delays the next cycle rather than
// overlapping it; cycles never run concurrently.
type Poller struct {
	source     Source
	store      Store
	fanout     Fanout
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	interval   time.Duration
	firstDelay time.Duration
}

// New creates a poller.
func New(source Source, store Store, fanout Fanout, m *metrics.Metrics, logger zerolog.Logger, interval, firstDelay time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if firstDelay <= 0 {
		firstDelay = 10 * time.Second
	}
	return &Poller{
		source:     source,
		store:      store,
		fanout:     fanout,
		metrics:    m,
		logger:     logger,
		interval:   interval,
		firstDelay: firstDelay,
	}
}

// Run blocks until ctx is cancelled. Cancellation is honored between cycles;
// an in-flight cycle finishes so a disclosure is never left half-fanned-out.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Poller started")

	select {
	case <-ctx.Done():
		return
	case <-time.After(p.firstDelay):
	}
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one poll cycle. No error in it terminates the process: fetch
// failures wait for the next tick, bad items are skipped, and storage errors
// abort only the current cycle.
func (p *Poller) cycle(ctx context.Context) {
	start := time.Now()
	p.metrics.Cycles.Inc()

	newCount, err := p.RunOnce(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("Poll cycle aborted")
		return
	}

	if newCount > 0 {
		p.logger.Info().
			Int("new", newCount).
			Dur("duration", time.Since(start)).
			Msg("Poll cycle completed with new disclosures")
	} else {
		p.logger.Info().Dur("duration", time.Since(start)).Msg("No new disclosures")
	}
}

// RunOnce executes a single cycle body and returns the number of newly
// stored disclosures.
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	items, err := p.source.FetchRawItems(ctx)
	if err != nil {
		p.metrics.FetchErrors.Inc()
		p.logger.Warn().Err(err).Msg("Upstream fetch failed, waiting for next cycle")
		return 0, nil
	}
	if len(items) == 0 {
		p.logger.Warn().Msg("No announcements fetched")
		return 0, nil
	}

	now := time.Now()
	newCount := 0
	for _, item := range items {
		d, err := ingest.Normalize(item, now)
		if err != nil {
			var parseErr *ingest.ParseError
			if errors.As(err, &parseErr) {
				p.metrics.ParseFailures.Inc()
				p.logger.Warn().Err(err).Msg("Skipping unparseable announcement")
				continue
			}
			return newCount, fmt.Errorf("normalize announcement: %w", err)
		}

		isNew, err := p.store.InsertIfNew(ctx, d)
		if err != nil {
			// Storage failure is fatal for the cycle; the next tick retries
			// and the dedup constraint keeps reprocessing idempotent.
			return newCount, fmt.Errorf("insert disclosure: %w", err)
		}
		if !isNew {
			continue
		}

		newCount++
		p.metrics.NewDisclosures.Inc()
		p.logger.Info().
			Str("disclosure_id", d.ID).
			Str("stock", d.StockCode).
			Str("category", string(d.Category)).
			Msg("New disclosure stored")

		// Recipient snapshot is fixed here; subscribers added mid-fanout are
		// not retroactively included.
		chatIDs, err := p.store.ListActiveSubscribers(ctx)
		if err != nil {
			return newCount, fmt.Errorf("list subscribers: %w", err)
		}

		report := p.fanout.NotifyAll(ctx, d, chatIDs)
		p.metrics.NotifySent.Add(float64(report.Succeeded))
		p.metrics.NotifyFailed.Add(float64(report.Failed))

		if err := p.store.MarkNotified(ctx, d.ID); err != nil {
			return newCount, fmt.Errorf("mark notified: %w", err)
		}
	}

	if active, err := p.store.CountActiveSubscribers(ctx); err == nil {
		p.metrics.ActiveSubscribers.Set(float64(active))
	}

	return newCount, nil
}
