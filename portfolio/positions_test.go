package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minance/gateway"
)

func position(symbol string, amount, price, value string) gateway.Position {
	return gateway.Position{
		Symbol: symbol,
		Amount: decimal.RequireFromString(amount),
		Price:  decimal.RequireFromString(price),
		Value:  decimal.RequireFromString(value),
	}
}

func TestRefreshDustThreshold(t *testing.T) {
	t.Parallel()

	p := NewPositions(DefaultDustThreshold)
	held := p.Refresh([]gateway.Position{
		position("BTC", "1", "50000", "50000"),
		position("DUST", "100", "0.0499", "4.99"),
		position("EDGE", "1", "5", "5.00"),
	})

	require.Len(t, held, 2)
	assert.Equal(t, "BTC", held[0].Symbol)
	assert.Equal(t, "EDGE", held[1].Symbol, "a value of exactly 5.00 stays visible")
}

func TestRefreshReplacesWholesale(t *testing.T) {
	t.Parallel()

	p := NewPositions(DefaultDustThreshold)
	p.Refresh([]gateway.Position{
		position("BTC", "1", "50000", "50000"),
		position("ETH", "2", "3000", "6000"),
	})

	held := p.Refresh([]gateway.Position{
		position("SOL", "10", "150", "1500"),
	})

	require.Len(t, held, 1)
	assert.Equal(t, []string{"SOL"}, p.Symbols())

	_, ok := p.Get("BTC")
	assert.False(t, ok, "previous view must not be merged in")
}

func TestTotalValue(t *testing.T) {
	t.Parallel()

	p := NewPositions(DefaultDustThreshold)
	p.Refresh([]gateway.Position{
		position("BTC", "1", "50000", "50000"),
		position("ETH", "2", "3000", "6000"),
		position("DUST", "1", "1", "1"),
	})

	assert.True(t, p.TotalValue().Equal(decimal.RequireFromString("56000")),
		"got %s", p.TotalValue())
}

func TestGet(t *testing.T) {
	t.Parallel()

	p := NewPositions(DefaultDustThreshold)
	p.Refresh([]gateway.Position{
		position("ETH", "2", "3000", "6000"),
	})

	pos, ok := p.Get("ETH")
	require.True(t, ok)
	assert.True(t, pos.Amount.Equal(decimal.NewFromInt(2)))

	_, ok = p.Get("BTC")
	assert.False(t, ok)
}
