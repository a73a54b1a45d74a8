package ledger

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Get returns the open entry for a symbol.
func (s *SQLite) Get(symbol string) (Entry, error) {
	row := s.db.QueryRow(`
		SELECT symbol, amount, quoted_sale_price, executed_sale_price, sold_at
		FROM sold_positions
		WHERE symbol = ?`, symbol)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, fmt.Errorf("entry %q not found", symbol)
		}
		return Entry{}, err
	}
	return e, nil
}

// List returns all open entries, oldest sale first.
func (s *SQLite) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT symbol, amount, quoted_sale_price, executed_sale_price, sold_at
		FROM sold_positions
		ORDER BY sold_at ASC, symbol ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RealizedPL returns the persisted accumulator of completed round trips.
func (s *SQLite) RealizedPL() (decimal.Decimal, error) {
	var raw string
	if err := s.db.QueryRow(`SELECT total FROM realized_pl WHERE id = 1`).Scan(&raw); err != nil {
		return decimal.Zero, err
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse realized P/L %q: %w", raw, err)
	}
	return total, nil
}

// ListHistory returns executed legs, newest first.
func (s *SQLite) ListHistory() ([]TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT trade_id, batch_id, side, symbol, amount, price, executed_at
		FROM trade_history
		ORDER BY trade_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var (
			rec           TradeRecord
			amount, price string
		)
		if err := rows.Scan(
			&rec.TradeID,
			&rec.BatchID,
			&rec.Side,
			&rec.Symbol,
			&amount,
			&price,
			&rec.ExecutedAt,
		); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e        Entry
		amount   string
		quoted   string
		executed sql.NullString
	)

	if err := row.Scan(&e.Symbol, &amount, &quoted, &executed, &e.SoldAt); err != nil {
		return Entry{}, err
	}

	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return Entry{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if e.QuotedSalePrice, err = decimal.NewFromString(quoted); err != nil {
		return Entry{}, fmt.Errorf("parse quoted price %q: %w", quoted, err)
	}
	if executed.Valid {
		p, err := decimal.NewFromString(executed.String)
		if err != nil {
			return Entry{}, fmt.Errorf("parse executed price %q: %w", executed.String, err)
		}
		e.ExecutedSalePrice = &p
	}

	return e, nil
}
