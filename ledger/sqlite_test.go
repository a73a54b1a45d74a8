package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func testEntry(symbol, amount, quoted, executed string, soldAt time.Time) Entry {
	e := Entry{
		Symbol:          symbol,
		Amount:          decimal.RequireFromString(amount),
		QuotedSalePrice: decimal.RequireFromString(quoted),
		SoldAt:          soldAt,
	}
	if executed != "" {
		p := decimal.RequireFromString(executed)
		e.ExecutedSalePrice = &p
	}
	return e
}

func TestNewSQLiteUnusablePath(t *testing.T) {
	t.Parallel()

	// A directory is not a database file: setup must fail here rather than
	// deferring the error to the first write.
	_, err := NewSQLite(t.TempDir())
	require.Error(t, err)
}

func TestRealizedPLStartsAtZero(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)

	total, err := s.RealizedPL()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRecordSalesRoundTrip(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	soldAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := s.RecordSales("B1", []Entry{
		testEntry("BTC", "1", "50500", "50000", soldAt),
		testEntry("ETH", "2.5", "3000", "", soldAt),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: the ledger must survive the process.
	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	btc, err := reopened.Get("BTC")
	require.NoError(t, err)
	require.NotNil(t, btc.ExecutedSalePrice)
	assert.True(t, btc.ExecutedSalePrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, btc.SalePrice().Equal(decimal.NewFromInt(50000)))
	assert.True(t, btc.SoldAt.Equal(soldAt))

	eth, err := reopened.Get("ETH")
	require.NoError(t, err)
	assert.Nil(t, eth.ExecutedSalePrice)
	assert.True(t, eth.SalePrice().Equal(decimal.NewFromInt(3000)), "quoted price is the fallback")

	_, err = reopened.Get("DOGE")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRecordSalesReplacesOpenEntry(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, s.RecordSales("B1", []Entry{
		testEntry("BTC", "1", "50000", "50000", first),
	}))
	require.NoError(t, s.RecordSales("B2", []Entry{
		testEntry("BTC", "0.8", "48000", "47900", second),
	}))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1, "re-selling must replace, never duplicate")

	got := entries[0]
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("0.8")))
	assert.True(t, got.SalePrice().Equal(decimal.NewFromInt(47900)), "only the second sale remains")
	assert.True(t, got.SoldAt.Equal(second))

	// Both sells still show up in history.
	history, err := s.ListHistory()
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestListOrdersByOldestSale(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSales("B1", []Entry{
		testEntry("ETH", "1", "3000", "", base.Add(time.Hour)),
		testEntry("BTC", "1", "50000", "", base),
	}))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "BTC", entries[0].Symbol)
	assert.Equal(t, "ETH", entries[1].Symbol)
}

func TestSettleBuyBacks(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	soldAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSales("B1", []Entry{
		testEntry("BTC", "1", "50500", "50000", soldAt),
		testEntry("ETH", "2", "3000", "", soldAt),
	}))

	err := s.SettleBuyBacks("B2", decimal.NewFromInt(5000), []TradeRecord{
		{
			Symbol:     "BTC",
			Amount:     decimal.NewFromInt(1),
			Price:      decimal.NewFromInt(45000),
			ExecutedAt: soldAt.Add(24 * time.Hour),
		},
	})
	require.NoError(t, err)

	// The settled entry is gone, the untouched one stays.
	_, err = s.Get("BTC")
	assert.Error(t, err)
	_, err = s.Get("ETH")
	assert.NoError(t, err)

	total, err := s.RealizedPL()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)), "got %s", total)

	// Accumulator and history survive a reopen.
	require.NoError(t, s.Close())
	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	total, err = reopened.RealizedPL()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)))

	history, err := reopened.ListHistory()
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, SideBuyBack, history[0].Side, "newest first")
	assert.Equal(t, "B2", history[0].BatchID)
}

func TestSettleBuyBacksAccumulates(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	soldAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSales("B1", []Entry{
		testEntry("BTC", "1", "50000", "50000", soldAt),
		testEntry("ETH", "1", "3000", "3000", soldAt),
	}))

	require.NoError(t, s.SettleBuyBacks("B2", decimal.NewFromInt(5000), []TradeRecord{
		{Symbol: "BTC", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(45000), ExecutedAt: soldAt},
	}))
	require.NoError(t, s.SettleBuyBacks("B3", decimal.NewFromInt(-200), []TradeRecord{
		{Symbol: "ETH", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(3200), ExecutedAt: soldAt},
	}))

	total, err := s.RealizedPL()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(4800)), "addition only, never reset; got %s", total)
}
