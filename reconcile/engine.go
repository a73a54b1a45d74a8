// Package reconcile merges gateway trade results into the liquidation
// ledger: sells become open ledger entries, buy-backs settle them into the
// realized P/L accumulator. Per-leg errors never abort siblings.
package reconcile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"minance/gateway"
	"minance/internal/id"
	"minance/ledger"
)

// Store is the slice of the ledger the engine mutates. All ledger writes go
// through these two calls, each of which is a single transaction.
type Store interface {
	RecordSales(batchID string, entries []ledger.Entry) error
	SettleBuyBacks(batchID string, delta decimal.Decimal, legs []ledger.TradeRecord) error
}

type Engine struct {
	store Store
	log   *slog.Logger
}

func NewEngine(store Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, log: log}
}

var one = decimal.NewFromInt(1)

// SellQuantity applies the exchange lot-size policy for low-price assets:
// below 1 unit of account per coin, only whole-coin quantities are accepted,
// so the amount is floored. Above that, the fractional amount goes through
// unchanged.
func SellQuantity(p gateway.Position) decimal.Decimal {
	if p.Price.LessThan(one) {
		return p.Amount.Floor()
	}
	return p.Amount
}

// PrepareSell builds the order batch for a confirmed selection. Legs that
// floor to zero are dropped; the bridge would reject them anyway.
func PrepareSell(positions []gateway.Position, selected []string) []gateway.OrderItem {
	want := make(map[string]bool, len(selected))
	for _, sym := range selected {
		want[sym] = true
	}

	items := make([]gateway.OrderItem, 0, len(selected))
	for _, p := range positions {
		if !want[p.Symbol] {
			continue
		}
		qty := SellQuantity(p)
		if !qty.IsPositive() {
			continue
		}
		items = append(items, gateway.OrderItem{Symbol: p.Symbol, Amount: qty})
	}
	return items
}

// SellReport partitions a sell batch: entries now open in the ledger vs legs
// the bridge rejected.
type SellReport struct {
	Recorded []ledger.Entry
	Failed   []gateway.TradeResult
}

// RecordSells merges a sell batch into the ledger. Every non-error leg
// becomes an open entry, replacing any prior entry for the same symbol;
// error legs are excluded and returned in the report. Entries are recorded
// in result order, in one store transaction. No P/L accrues on the sell leg.
func (e *Engine) RecordSells(results []gateway.TradeResult) (SellReport, error) {
	var rep SellReport
	for _, r := range results {
		if r.Failed() {
			e.log.Warn("sell leg failed", "symbol", r.Symbol, "error", r.Error)
			rep.Failed = append(rep.Failed, r)
			continue
		}

		entry := ledger.Entry{
			Symbol:          r.Symbol,
			Amount:          r.Amount,
			QuotedSalePrice: r.QuotedPrice,
			SoldAt:          resultTime(r),
		}
		if r.ExecutedPrice.IsPositive() {
			executed := r.ExecutedPrice
			entry.ExecutedSalePrice = &executed
		}
		rep.Recorded = append(rep.Recorded, entry)
	}

	if len(rep.Recorded) > 0 {
		if err := e.store.RecordSales(id.New(), rep.Recorded); err != nil {
			return rep, fmt.Errorf("record sales: %w", err)
		}
	}
	return rep, nil
}

// Settlement is the outcome of a buy-back batch. Delta is the realized P/L
// added to the accumulator by this batch. Skipped legs are data
// inconsistencies (no matching ledger entry, zero sale price, or a
// non-positive fill): left in the ledger untouched and surfaced here rather
// than treated as fatal.
type Settlement struct {
	Delta   decimal.Decimal
	Settled []ledger.Entry
	Failed  []gateway.TradeResult
	Skipped []gateway.TradeResult
}

// SettleBuyBacks reconciles a buy-back batch against the open entries the
// batch was submitted from. Each qualifying leg realizes
// (salePrice - executedBuyPrice) * amount and removes its entry; error legs
// stay open for retry. All qualifying legs settle in one store transaction.
func (e *Engine) SettleBuyBacks(entries []ledger.Entry, results []gateway.TradeResult) (Settlement, error) {
	open := make(map[string]ledger.Entry, len(entries))
	for _, entry := range entries {
		open[entry.Symbol] = entry
	}

	s := Settlement{Delta: decimal.Zero}
	var legs []ledger.TradeRecord

	for _, r := range results {
		if r.Failed() {
			e.log.Warn("buy-back leg failed", "symbol", r.Symbol, "error", r.Error)
			s.Failed = append(s.Failed, r)
			continue
		}

		entry, ok := open[r.Symbol]
		if !ok || !r.Amount.IsPositive() || !r.ExecutedPrice.IsPositive() || !entry.SalePrice().IsPositive() {
			e.log.Warn("buy-back leg skipped", "symbol", r.Symbol)
			s.Skipped = append(s.Skipped, r)
			continue
		}

		s.Delta = s.Delta.Add(entry.SalePrice().Sub(r.ExecutedPrice).Mul(r.Amount))
		s.Settled = append(s.Settled, entry)
		legs = append(legs, ledger.TradeRecord{
			Symbol:     r.Symbol,
			Amount:     r.Amount,
			Price:      r.ExecutedPrice,
			ExecutedAt: resultTime(r),
		})
		// One settlement per symbol per batch.
		delete(open, r.Symbol)
	}

	if len(legs) > 0 {
		if err := e.store.SettleBuyBacks(id.New(), s.Delta, legs); err != nil {
			return s, fmt.Errorf("settle buy-backs: %w", err)
		}
	}
	return s, nil
}

func resultTime(r gateway.TradeResult) time.Time {
	if r.Timestamp > 0 {
		return time.Unix(r.Timestamp, 0).UTC()
	}
	return time.Now().UTC()
}
