package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

// --- Testify mocks ---

type MockRateRepository struct{ mock.Mock }

func (m *MockRateRepository) LatestRateDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(time.Time)
	return d, args.Error(1)
}

func (m *MockRateRepository) EarliestRateDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(time.Time)
	return d, args.Error(1)
}

func (m *MockRateRepository) CurrencyRate(ctx context.Context, code string, date time.Time) (float64, error) {
	args := m.Called(ctx, code, date)
	r, _ := args.Get(0).(float64)
	return r, args.Error(1)
}

func (m *MockRateRepository) InsertRates(ctx context.Context, records []domain.RateRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) CurrencyExists(ctx context.Context, code string, date time.Time) (bool, error) {
	args := m.Called(ctx, code, date)
	return args.Bool(0), args.Error(1)
}

// fakeTransport is an in-memory cache transport.
type fakeTransport struct {
	entries map[string]string
	ttls    map[string]time.Duration
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeTransport) Get(_ context.Context, key string) (string, bool) {
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeTransport) Set(_ context.Context, key string, value string, ttl time.Duration) {
	f.entries[key] = value
	f.ttls[key] = ttl
}

var (
	earliest = time.Date(2018, 10, 1, 0, 0, 0, 0, time.UTC)
	latest   = time.Date(2018, 10, 10, 0, 0, 0, 0, time.UTC)
	midRange = time.Date(2018, 10, 5, 0, 0, 0, 0, time.UTC)
)

func newTestEngine() (*Engine, *MockRateRepository, *MockCatalog, *fakeTransport) {
	repo := new(MockRateRepository)
	catalog := new(MockCatalog)
	cache := newFakeTransport()
	return NewEngine(repo, catalog, cache, 0), repo, catalog, cache
}

func expectRange(repo *MockRateRepository) {
	repo.On("EarliestRateDate", mock.Anything).Return(earliest, nil).Once()
	repo.On("LatestRateDate", mock.Anything).Return(latest, nil).Once()
}

// --- Boundary dates ---

func TestEngine_LatestRateDate_CacheAside(t *testing.T) {
	engine, repo, _, cache := newTestEngine()
	ctx := context.Background()

	repo.On("LatestRateDate", mock.Anything).Return(latest, nil).Once()

	got, err := engine.LatestRateDate(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(latest))
	require.Equal(t, "2018-10-10", cache.entries["latest-date"])
	require.Equal(t, DefaultTTL, cache.ttls["latest-date"])

	// Second call within TTL must not hit the store.
	got, err = engine.LatestRateDate(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(latest))
	repo.AssertNumberOfCalls(t, "LatestRateDate", 1)
}

func TestEngine_LatestRateDate_EmptyStoreReturnsSentinel(t *testing.T) {
	engine, repo, _, cache := newTestEngine()

	repo.On("LatestRateDate", mock.Anything).Return(time.Time{}, domain.ErrNoRates).Once()

	got, err := engine.LatestRateDate(context.Background())
	require.NoError(t, err)
	require.True(t, got.Equal(domain.SentinelDate))
	require.Equal(t, "0000-01-01", cache.entries["latest-date"])
}

func TestEngine_EarliestRateDate_StoreError(t *testing.T) {
	engine, repo, _, _ := newTestEngine()

	wantErr := errors.New("db temporarily unavailable")
	repo.On("EarliestRateDate", mock.Anything).Return(time.Time{}, wantErr).Once()

	_, err := engine.EarliestRateDate(context.Background())
	require.ErrorIs(t, err, wantErr)
}

// --- Date range validation ---

func TestEngine_CheckDateInRange_BeforeEarliest(t *testing.T) {
	engine, repo, _, _ := newTestEngine()
	repo.On("EarliestRateDate", mock.Anything).Return(earliest, nil).Once()

	err := engine.CheckDateInRange(context.Background(), time.Date(2018, 9, 30, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.True(t, domain.IsInputError(err))
	require.Contains(t, err.Error(), "2018-09-30")
	require.Contains(t, err.Error(), "earliest available date - '2018-10-01'")
}

func TestEngine_CheckDateInRange_AfterLatest(t *testing.T) {
	engine, repo, _, _ := newTestEngine()
	expectRange(repo)

	err := engine.CheckDateInRange(context.Background(), time.Date(2018, 10, 11, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.True(t, domain.IsInputError(err))
	require.Contains(t, err.Error(), "2018-10-11")
	require.Contains(t, err.Error(), "latest available date - '2018-10-10'")
}

func TestEngine_CheckDateInRange_BoundsInclusive(t *testing.T) {
	engine, repo, _, _ := newTestEngine()
	expectRange(repo)

	require.NoError(t, engine.CheckDateInRange(context.Background(), earliest))

	// Cached bounds serve the second check.
	require.NoError(t, engine.CheckDateInRange(context.Background(), latest))
}

// --- Currency existence ---

func TestEngine_CheckCurrencyExists_Absent(t *testing.T) {
	engine, _, catalog, _ := newTestEngine()
	catalog.On("CurrencyExists", mock.Anything, "GBP", midRange).Return(false, nil).Once()

	err := engine.CheckCurrencyExists(context.Background(), "GBP", midRange)
	require.Error(t, err)
	require.True(t, domain.IsInputError(err))
	require.Contains(t, err.Error(), "'GBP'")
	require.Contains(t, err.Error(), "'2018-10-05'")
}

func TestEngine_CheckCurrencyExists_Present(t *testing.T) {
	engine, _, catalog, _ := newTestEngine()
	catalog.On("CurrencyExists", mock.Anything, "USD", midRange).Return(true, nil).Once()

	require.NoError(t, engine.CheckCurrencyExists(context.Background(), "USD", midRange))
}

// --- Single-currency rate lookup ---

func TestEngine_CurrencyRate_CacheAside(t *testing.T) {
	engine, repo, _, cache := newTestEngine()
	ctx := context.Background()

	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(1.1451, nil).Once()

	rate, err := engine.CurrencyRate(ctx, "USD", midRange)
	require.NoError(t, err)
	require.InDelta(t, 1.1451, rate, 1e-9)
	require.Equal(t, "1.1451", cache.entries["rate:USD:2018-10-05"])

	rate, err = engine.CurrencyRate(ctx, "USD", midRange)
	require.NoError(t, err)
	require.InDelta(t, 1.1451, rate, 1e-9)
	repo.AssertNumberOfCalls(t, "CurrencyRate", 1)
}

func TestEngine_CurrencyRate_MissingRowIsInternal(t *testing.T) {
	engine, repo, _, _ := newTestEngine()

	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(0.0, domain.ErrRateNotFound).Once()

	_, err := engine.CurrencyRate(context.Background(), "USD", midRange)
	require.Error(t, err)
	require.False(t, domain.IsInputError(err))
	require.ErrorIs(t, err, domain.ErrRateNotFound)
	require.Contains(t, err.Error(), "USD")
	require.Contains(t, err.Error(), "2018-10-05")
}

// --- Conversion ---

func TestEngine_ConvertRate_CrossRate(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)
	catalog.On("CurrencyExists", mock.Anything, "USD", midRange).Return(true, nil).Once()
	catalog.On("CurrencyExists", mock.Anything, "JPY", midRange).Return(true, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "JPY", midRange).Return(127.94, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(1.1451, nil).Once()

	rate, err := engine.ConvertRate(context.Background(), midRange, "USD", "JPY")
	require.NoError(t, err)
	require.InDelta(t, 127.94/1.1451, rate, 1e-9)
}

func TestEngine_ConvertRate_SameCurrencyIsOne(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)
	catalog.On("CurrencyExists", mock.Anything, "USD", midRange).Return(true, nil).Twice()
	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(1.1451, nil).Once()

	rate, err := engine.ConvertRate(context.Background(), midRange, "USD", "USD")
	require.NoError(t, err)
	require.InDelta(t, 1.0, rate, 1e-9)
}

func TestEngine_ConvertRate_BadDateNeverChecksCurrencies(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)

	_, err := engine.ConvertRate(context.Background(), time.Date(2018, 10, 11, 0, 0, 0, 0, time.UTC), "USD", "JPY")
	require.True(t, domain.IsInputError(err))
	catalog.AssertNotCalled(t, "CurrencyExists", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CurrencyRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_ConvertRate_UnknownCurrencyNeverLooksUpRates(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)
	catalog.On("CurrencyExists", mock.Anything, "XXX", midRange).Return(false, nil).Once()

	_, err := engine.ConvertRate(context.Background(), midRange, "XXX", "JPY")
	require.True(t, domain.IsInputError(err))
	// The to-code existence check never runs once the from-code fails.
	catalog.AssertNotCalled(t, "CurrencyExists", mock.Anything, "JPY", mock.Anything)
	repo.AssertNotCalled(t, "CurrencyRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_ConvertAmount_RoundsHalfUp(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)
	catalog.On("CurrencyExists", mock.Anything, "USD", midRange).Return(true, nil).Once()
	catalog.On("CurrencyExists", mock.Anything, "JPY", midRange).Return(true, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "JPY", midRange).Return(127.94, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(1.1451, nil).Once()

	amount, err := engine.ConvertAmount(context.Background(), midRange, "USD", "JPY", 100)
	require.NoError(t, err)

	want := 127.94 / 1.1451 * 100
	require.InDelta(t, want, amount, 0.005)
	// Exactly two decimal places survive.
	require.InDelta(t, amount, float64(int64(amount*100+0.5))/100, 1e-9)
}

func TestEngine_ConvertAmount_HalfUpAtMidpoint(t *testing.T) {
	engine, repo, catalog, _ := newTestEngine()
	expectRange(repo)
	catalog.On("CurrencyExists", mock.Anything, "USD", midRange).Return(true, nil).Once()
	catalog.On("CurrencyExists", mock.Anything, "JPY", midRange).Return(true, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "JPY", midRange).Return(0.125, nil).Once()
	repo.On("CurrencyRate", mock.Anything, "USD", midRange).Return(1.0, nil).Once()

	// 0.125 * 1 = 0.125 rounds up to 0.13, not down to 0.12.
	amount, err := engine.ConvertAmount(context.Background(), midRange, "USD", "JPY", 1)
	require.NoError(t, err)
	require.InDelta(t, 0.13, amount, 1e-9)
}
