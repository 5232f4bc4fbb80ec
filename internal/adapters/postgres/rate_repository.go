package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

func (r *RateRepository) LatestRateDate(ctx context.Context) (time.Time, error) {
	return r.boundaryDate(ctx, `
		select date_recorded from exchange_rates_against_base_currency
		order by date_recorded desc
		limit 1;
	`)
}

func (r *RateRepository) EarliestRateDate(ctx context.Context) (time.Time, error) {
	return r.boundaryDate(ctx, `
		select date_recorded from exchange_rates_against_base_currency
		order by date_recorded asc
		limit 1;
	`)
}

func (r *RateRepository) boundaryDate(ctx context.Context, q string) (time.Time, error) {
	var d time.Time
	if err := r.pool.QueryRow(ctx, q).Scan(&d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, domain.ErrNoRates
		}
		return time.Time{}, fmt.Errorf("failed to select boundary rate date: %w", err)
	}
	return d, nil
}

func (r *RateRepository) CurrencyRate(ctx context.Context, code string, date time.Time) (float64, error) {
	const q = `
		select e_rates.rate
		from exchange_rates_against_base_currency as e_rates
		join currencies on e_rates.currency_id = currencies.id
		where e_rates.date_recorded = $1 and currencies.currency_code = $2
		limit 1;
	`

	var rate float64
	if err := r.pool.QueryRow(ctx, q, date, code).Scan(&rate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRateNotFound
		}
		return 0, fmt.Errorf("failed to select rate for %q on %q: %w", code, domain.FormatDate(date), err)
	}
	return rate, nil
}

// InsertRates applies a fetched batch atomically. Every row is insert-ignore
// so re-ingesting an already-present (date, currency) pair never overwrites;
// any error rolls the whole batch back.
func (r *RateRepository) InsertRates(ctx context.Context, records []domain.RateRecord) error {
	const insertCurrency = `
		insert into currencies (currency_code) values ($1)
		on conflict (currency_code) do nothing;
	`
	const insertRate = `
		insert into exchange_rates_against_base_currency (rate, date_recorded, currency_id)
		select $1, $2, id from currencies where currency_code = $3
		on conflict (date_recorded, currency_id) do nothing;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		if _, err = tx.Exec(ctx, insertCurrency, rec.CurrencyCode); err != nil {
			return fmt.Errorf("failed to insert currency %q: %w", rec.CurrencyCode, err)
		}
		if _, err = tx.Exec(ctx, insertRate, rec.Rate, rec.DateRecorded, rec.CurrencyCode); err != nil {
			return fmt.Errorf("failed to insert rate for %q on %q: %w",
				rec.CurrencyCode, domain.FormatDate(rec.DateRecorded), err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
