package portfolio

import (
	"github.com/shopspring/decimal"

	"minance/gateway"
	"minance/ledger"
)

// PriceCache holds the last known mark price per symbol, replaced wholesale
// on each refresh. It exists to value open ledger entries; order submission
// always uses fresh gateway quotes, never this cache.
type PriceCache struct {
	prices map[string]decimal.Decimal
}

func NewPriceCache() *PriceCache {
	return &PriceCache{prices: make(map[string]decimal.Decimal)}
}

// Refresh replaces the whole cache from a balance snapshot.
func (c *PriceCache) Refresh(snapshot []gateway.Position) {
	prices := make(map[string]decimal.Decimal, len(snapshot))
	for _, pos := range snapshot {
		prices[pos.Symbol] = pos.Price
	}
	c.prices = prices
}

// Price returns the last known mark price for a symbol.
func (c *PriceCache) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := c.prices[symbol]
	return p, ok
}

// UnrealizedPL sums (saleReferencePrice - currentPrice) * amount over open
// ledger entries: the loss or gain the user avoided or missed by selling
// instead of holding. A symbol with no cached price values at zero.
func UnrealizedPL(entries []ledger.Entry, prices *PriceCache) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		current, _ := prices.Price(e.Symbol)
		total = total.Add(e.SalePrice().Sub(current).Mul(e.Amount))
	}
	return total
}

// LedgerValue sums currentPrice * amount over open ledger entries: what the
// sold holdings would be worth at the current mark.
func LedgerValue(entries []ledger.Entry, prices *PriceCache) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		current, _ := prices.Price(e.Symbol)
		total = total.Add(current.Mul(e.Amount))
	}
	return total
}
