package currency

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/adapters"
	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

// DefaultTTL bounds catalog staleness; the feed updates once a day so a
// minutes-scale window is harmless.
const DefaultTTL = 5 * time.Minute

// Catalog resolves which currency codes have a recorded rate on a given
// date, cache-aside over the store.
type Catalog struct {
	repo  adapters.CurrencyRepository
	cache adapters.CacheTransport
	ttl   time.Duration
}

// ListCurrencies returns all currency codes recorded for date. Empty results
// are never cached so a temporarily stale store gets re-checked instead of
// locking in "no currencies".
func (c *Catalog) ListCurrencies(ctx context.Context, date time.Time) ([]string, error) {
	key := "currencies:" + domain.FormatDate(date)
	if cached, ok := c.cache.Get(ctx, key); ok {
		var codes []string
		if err := json.Unmarshal([]byte(cached), &codes); err == nil {
			return codes, nil
		}
		logrus.WithField("key", key).Warn("Discarding undecodable cached currency list")
	}

	codes, err := c.repo.CodesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if len(codes) > 0 {
		if encoded, err := json.Marshal(codes); err == nil {
			c.cache.Set(ctx, key, string(encoded), c.ttl)
		}
	}
	return codes, nil
}

// CurrencyExists reports whether code has a recorded rate on date.
func (c *Catalog) CurrencyExists(ctx context.Context, code string, date time.Time) (bool, error) {
	codes, err := c.ListCurrencies(ctx, date)
	if err != nil {
		return false, err
	}
	return slices.Contains(codes, code), nil
}

func NewCatalog(repo adapters.CurrencyRepository, cache adapters.CacheTransport, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{repo: repo, cache: cache, ttl: ttl}
}
