package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Credentials are forwarded to the exchange bridge with every request; the
// bridge itself is stateless and never stores them.
type Credentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// Position is one holding from an account snapshot. Value is the holding's
// worth in the quote currency (value_usdt on the wire).
type Position struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value_usdt"`
}

// OrderItem is a single leg of a sell or buy batch.
type OrderItem struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// TradeResult is the per-leg outcome of a batch order. ExecutedPrice is the
// average fill price and is zero when the bridge had no fill to report;
// QuotedPrice is the pre-trade mark. A non-empty Error means the leg failed
// and nothing was executed for it.
type TradeResult struct {
	Symbol        string          `json:"symbol"`
	Amount        decimal.Decimal `json:"amount"`
	QuotedPrice   decimal.Decimal `json:"price"`
	ExecutedPrice decimal.Decimal `json:"actual_price"`
	Timestamp     int64           `json:"timestamp"`
	Error         string          `json:"error,omitempty"`
}

// Failed reports whether this leg carried a per-leg error.
func (r TradeResult) Failed() bool { return r.Error != "" }

// Gateway is the exchange bridge contract. Batch calls are not atomic: each
// leg carries its own success or error, and a transport-level failure is the
// only case where the whole batch fails as one.
type Gateway interface {
	Balance(ctx context.Context, creds Credentials) ([]Position, error)
	Sell(ctx context.Context, creds Credentials, items []OrderItem) ([]TradeResult, error)
	Buy(ctx context.Context, creds Credentials, items []OrderItem) ([]TradeResult, error)
}
