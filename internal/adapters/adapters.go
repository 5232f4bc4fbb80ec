package adapters

import (
	"context"
	"time"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

// CacheTransport is an advisory key/value store. Losing an entry must never
// change the correctness of a result, only its latency, so implementations
// swallow their own failures: Get reports a miss and Set is a no-op.
type CacheTransport interface {
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

type RateRepository interface {
	// LatestRateDate returns the maximum date_recorded across all rate
	// records, or domain.ErrNoRates on an empty store.
	LatestRateDate(ctx context.Context) (time.Time, error)
	// EarliestRateDate returns the minimum date_recorded, or domain.ErrNoRates.
	EarliestRateDate(ctx context.Context) (time.Time, error)
	// CurrencyRate returns the stored rate-vs-base for (date, code), or
	// domain.ErrRateNotFound.
	CurrencyRate(ctx context.Context, code string, date time.Time) (float64, error)
	// InsertRates persists all records in a single transaction with
	// insert-ignore semantics; either every row applies or none do.
	InsertRates(ctx context.Context, records []domain.RateRecord) error
}

type CurrencyRepository interface {
	// CodesForDate returns every currency code with a recorded rate on date.
	CodesForDate(ctx context.Context, date time.Time) ([]string, error)
}

type FeedClient interface {
	// FetchLatestRates downloads and parses the remote reference feed into
	// rate records in document order.
	FetchLatestRates(ctx context.Context) ([]domain.RateRecord, error)
}
