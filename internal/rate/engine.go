package rate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/lewnelson/foreign-exchange-api/internal/adapters"
	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

// DefaultTTL for engine cache entries. Boundary dates and rates change at
// most once per ingestion cycle, so a minutes-scale window is safe.
const DefaultTTL = 5 * time.Minute

const (
	latestDateKey   = "latest-date"
	earliestDateKey = "earliest-date"
)

// CurrencyCatalog reports which currency codes exist for a date.
type CurrencyCatalog interface {
	CurrencyExists(ctx context.Context, code string, date time.Time) (bool, error)
}

// Engine answers point-in-time rate queries against the store's current
// content. It holds no state besides the advisory cache, so it is safe for
// concurrent callers.
type Engine struct {
	repo    adapters.RateRepository
	catalog CurrencyCatalog
	cache   adapters.CacheTransport
	ttl     time.Duration
}

// LatestRateDate returns the maximum recorded date, or the sentinel date on
// an empty store.
func (e *Engine) LatestRateDate(ctx context.Context) (time.Time, error) {
	return e.boundaryDate(ctx, latestDateKey, e.repo.LatestRateDate)
}

// EarliestRateDate returns the minimum recorded date, or the sentinel date
// on an empty store.
func (e *Engine) EarliestRateDate(ctx context.Context) (time.Time, error) {
	return e.boundaryDate(ctx, earliestDateKey, e.repo.EarliestRateDate)
}

func (e *Engine) boundaryDate(ctx context.Context, key string, lookup func(context.Context) (time.Time, error)) (time.Time, error) {
	if cached, ok := e.cache.Get(ctx, key); ok {
		if date, err := domain.ParseDate(cached); err == nil {
			return date, nil
		}
	}

	date, err := lookup(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoRates) {
			return time.Time{}, err
		}
		date = domain.SentinelDate
	}

	e.cache.Set(ctx, key, domain.FormatDate(date), e.ttl)
	return date, nil
}

// CheckDateInRange fails with an input error when date falls outside the
// inclusive [earliest, latest] domain of recorded dates. The error names the
// violated bound and its value.
func (e *Engine) CheckDateInRange(ctx context.Context, date time.Time) error {
	earliest, err := e.EarliestRateDate(ctx)
	if err != nil {
		return err
	}
	if date.Before(earliest) {
		return domain.NewInputError("Date '%s' precedes earliest available date - '%s'",
			domain.FormatDate(date), domain.FormatDate(earliest))
	}

	latest, err := e.LatestRateDate(ctx)
	if err != nil {
		return err
	}
	if date.After(latest) {
		return domain.NewInputError("Date '%s' cannot exceed latest available date - '%s'",
			domain.FormatDate(date), domain.FormatDate(latest))
	}
	return nil
}

// CheckCurrencyExists fails with an input error when code has no recorded
// rate on date.
func (e *Engine) CheckCurrencyExists(ctx context.Context, code string, date time.Time) error {
	exists, err := e.catalog.CurrencyExists(ctx, code, date)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewInputError("Currency code '%s' does not exist for date '%s'",
			code, domain.FormatDate(date))
	}
	return nil
}

// CurrencyRate returns the stored rate-vs-base for (date, code). A missing
// row here is not an input error: existence is validated beforehand, so it
// indicates a data-consistency gap.
func (e *Engine) CurrencyRate(ctx context.Context, code string, date time.Time) (float64, error) {
	key := "rate:" + code + ":" + domain.FormatDate(date)
	if cached, ok := e.cache.Get(ctx, key); ok {
		if rate, err := strconv.ParseFloat(cached, 64); err == nil {
			return rate, nil
		}
	}

	rate, err := e.repo.CurrencyRate(ctx, code, date)
	if err != nil {
		return 0, fmt.Errorf("unable to find rate for currency_code=%q on date=%q: %w",
			code, domain.FormatDate(date), err)
	}

	e.cache.Set(ctx, key, strconv.FormatFloat(rate, 'f', -1, 64), e.ttl)
	return rate, nil
}

// ConvertRate computes the from->to exchange rate on date. Both stored rates
// are quoted against the same base currency, so the cross-rate is the ratio
// rate(to)/rate(from). Validation order is fixed: date range first, then both
// currency existences, so a bad date never leaks a currency error and an
// unknown currency never reaches a rate lookup.
func (e *Engine) ConvertRate(ctx context.Context, date time.Time, fromCode, toCode string) (float64, error) {
	if err := e.CheckDateInRange(ctx, date); err != nil {
		return 0, err
	}
	if err := e.CheckCurrencyExists(ctx, fromCode, date); err != nil {
		return 0, err
	}
	if err := e.CheckCurrencyExists(ctx, toCode, date); err != nil {
		return 0, err
	}

	toRate, err := e.CurrencyRate(ctx, toCode, date)
	if err != nil {
		return 0, err
	}
	fromRate, err := e.CurrencyRate(ctx, fromCode, date)
	if err != nil {
		return 0, err
	}
	return toRate / fromRate, nil
}

// ConvertAmount converts amount from one currency to another, rounded to two
// decimal places half-up.
func (e *Engine) ConvertAmount(ctx context.Context, date time.Time, fromCode, toCode string, amount float64) (float64, error) {
	rate, err := e.ConvertRate(ctx, date, fromCode, toCode)
	if err != nil {
		return 0, err
	}
	return math.Round(rate*amount*100) / 100, nil
}

func NewEngine(repo adapters.RateRepository, catalog CurrencyCatalog, cache adapters.CacheTransport, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Engine{repo: repo, catalog: catalog, cache: cache, ttl: ttl}
}
