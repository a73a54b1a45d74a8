package portfolio

import (
	"github.com/shopspring/decimal"

	"minance/gateway"
)

// DefaultDustThreshold hides holdings worth less than 5 units of the quote
// currency from the active view.
var DefaultDustThreshold = decimal.NewFromInt(5)

// Positions is the active view of the account's holdings. Each Refresh
// replaces the view wholesale from a fresh snapshot; there is no incremental
// merging, so the view can never go stale relative to its snapshot.
type Positions struct {
	threshold decimal.Decimal
	held      []gateway.Position
}

func NewPositions(dustThreshold decimal.Decimal) *Positions {
	return &Positions{threshold: dustThreshold}
}

// Refresh rebuilds the view from a snapshot, dropping positions whose quote
// value is below the dust threshold, and returns the new view. On a failed
// balance call the caller simply doesn't refresh, which leaves the previous
// view intact.
func (p *Positions) Refresh(snapshot []gateway.Position) []gateway.Position {
	held := make([]gateway.Position, 0, len(snapshot))
	for _, pos := range snapshot {
		if pos.Value.LessThan(p.threshold) {
			continue
		}
		held = append(held, pos)
	}
	p.held = held
	return held
}

// Held returns the current view in snapshot order.
func (p *Positions) Held() []gateway.Position {
	return p.held
}

// Get returns the held position for a symbol.
func (p *Positions) Get(symbol string) (gateway.Position, bool) {
	for _, pos := range p.held {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return gateway.Position{}, false
}

// Symbols returns the held symbols in snapshot order.
func (p *Positions) Symbols() []string {
	syms := make([]string, 0, len(p.held))
	for _, pos := range p.held {
		syms = append(syms, pos.Symbol)
	}
	return syms
}

// TotalValue sums the quote value of the active view.
func (p *Positions) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.held {
		total = total.Add(pos.Value)
	}
	return total
}
