package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// CodesForDate lists every currency code with a recorded rate on date;
// currency existence is date-scoped.
func (r *CurrencyRepository) CodesForDate(ctx context.Context, date time.Time) ([]string, error) {
	const q = `
		select currencies.currency_code
		from exchange_rates_against_base_currency
		join currencies on exchange_rates_against_base_currency.currency_id = currencies.id
		where exchange_rates_against_base_currency.date_recorded = $1
		order by currencies.currency_code;
	`

	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0, 32)
	for rows.Next() {
		var code string
		if err = rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan currency code: %w", err)
		}
		codes = append(codes, code)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return codes, nil
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}
