package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one symbol's open "sold, not yet repurchased" position. There is
// at most one entry per symbol: re-selling a symbol replaces its entry.
type Entry struct {
	Symbol            string
	Amount            decimal.Decimal
	QuotedSalePrice   decimal.Decimal
	ExecutedSalePrice *decimal.Decimal
	SoldAt            time.Time
}

// SalePrice is the sale reference price for P/L: the executed fill price when
// one was recorded and positive, otherwise the pre-trade quote. This is the
// only place that precedence lives.
func (e Entry) SalePrice() decimal.Decimal {
	if e.ExecutedSalePrice != nil && e.ExecutedSalePrice.IsPositive() {
		return *e.ExecutedSalePrice
	}
	return e.QuotedSalePrice
}

// Sides for trade-history rows.
const (
	SideSell    = "sell"
	SideBuyBack = "buyback"
)

// TradeRecord is one executed leg as it appears in the history table. Price
// is the executed price when the bridge reported one, else the quote the leg
// was submitted against.
type TradeRecord struct {
	TradeID    string
	BatchID    string
	Side       string
	Symbol     string
	Amount     decimal.Decimal
	Price      decimal.Decimal
	ExecutedAt time.Time
}
