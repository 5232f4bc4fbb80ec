package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/adapters"
	"github.com/lewnelson/foreign-exchange-api/internal/metrics"
)

// Reference rates are published on central-bank time, one hour ahead of UTC,
// so staleness is judged against "today" in that offset.
var feedZone = time.FixedZone("UTC+1", 3600)

// RateDates resolves the latest recorded rate date; satisfied by the rate
// engine so staleness checks share its cache.
type RateDates interface {
	LatestRateDate(ctx context.Context) (time.Time, error)
}

type Config struct {
	// MaxAttempts caps fetch+persist attempts within one cycle.
	MaxAttempts int
	// RetryDelay separates attempts within a cycle.
	RetryDelay time.Duration
}

// Job runs one ingestion cycle: staleness check, then fetch-parse-persist
// with capped retries. The surrounding scheduler provides the long tick
// between cycles, so a terminally failed cycle simply waits for the next one.
type Job struct {
	dates   RateDates
	rates   adapters.RateRepository
	feed    adapters.FeedClient
	clock   clockwork.Clock
	cfg     Config
	metrics *metrics.Metrics
}

// Run executes a full ingestion cycle. It returns nil when the store is
// already current or a batch committed, and the last persistence error once
// the attempt ceiling is reached.
func (j *Job) Run(ctx context.Context, execID string) error {
	logrus.WithField("execID", execID).Info("Performing exchange rates update")

	latest, err := j.dates.LatestRateDate(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve latest rate date: %w", err)
	}

	today := dateIn(j.clock.Now(), feedZone)
	if !today.After(dateOnly(latest)) {
		logrus.WithField("execID", execID).Info("Already up to date")
		return nil
	}

	for attempt := 1; ; attempt++ {
		logrus.WithField("execID", execID).Infof("Update exchange rates attempt #%d", attempt)
		j.metrics.IngestAttemptsTotal.Inc()

		err = j.fetchAndPersist(ctx, execID)
		if err == nil {
			logrus.WithField("execID", execID).Infof("Successfully updated exchange rates after %d attempts", attempt)
			return nil
		}

		logrus.WithError(err).WithField("execID", execID).Error("Failed to update exchange rates")
		j.metrics.IngestFailuresTotal.Inc()

		if attempt >= j.cfg.MaxAttempts {
			logrus.WithField("execID", execID).Errorf("Failed to update exchange rates after %d attempts", attempt)
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-j.clock.After(j.cfg.RetryDelay):
		}
	}
}

// fetchAndPersist downloads and persists one batch. Each attempt re-fetches
// the feed, so stale download state never survives into a retry. Fetch
// failures degrade to an empty batch, which commits trivially; only
// persistence errors count as failed attempts.
func (j *Job) fetchAndPersist(ctx context.Context, execID string) error {
	records, err := j.feed.FetchLatestRates(ctx)
	if err != nil {
		logrus.WithError(err).WithField("execID", execID).Warn("Fetching latest rates failed, persisting empty batch")
		records = nil
	}

	if err = j.rates.InsertRates(ctx, records); err != nil {
		return err
	}
	j.metrics.IngestRecordsTotal.Add(float64(len(records)))
	return nil
}

func dateIn(t time.Time, zone *time.Location) time.Time {
	return dateOnly(t.In(zone))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NewJob(dates RateDates, rates adapters.RateRepository, feed adapters.FeedClient, clock clockwork.Clock, m *metrics.Metrics, cfg Config) *Job {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Second
	}
	return &Job{dates: dates, rates: rates, feed: feed, clock: clock, cfg: cfg, metrics: m}
}
