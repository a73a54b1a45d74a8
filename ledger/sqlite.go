package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"minance/internal/id"
)

// SQLite is the durable ledger store: open sold positions, the realized P/L
// accumulator, and the trade history, all in one database file so related
// mutations can share a transaction.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	// Seed the accumulator row so reads never miss.
	if _, err := db.Exec(`INSERT OR IGNORE INTO realized_pl (id, total) VALUES (1, '0')`); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordSales upserts one ledger entry per sold leg and appends matching
// history rows, all in one transaction. The upsert replaces any open entry
// for the same symbol; entries are applied in slice order, so the last sale
// of a symbol within a batch wins.
func (s *SQLite) RecordSales(batchID string, entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		var executed any
		if e.ExecutedSalePrice != nil {
			executed = e.ExecutedSalePrice.String()
		}

		_, err = tx.Exec(`
			INSERT INTO sold_positions (symbol, amount, quoted_sale_price, executed_sale_price, sold_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(symbol) DO UPDATE SET
				amount = excluded.amount,
				quoted_sale_price = excluded.quoted_sale_price,
				executed_sale_price = excluded.executed_sale_price,
				sold_at = excluded.sold_at`,
			e.Symbol, e.Amount.String(), e.QuotedSalePrice.String(), executed, e.SoldAt,
		)
		if err != nil {
			return fmt.Errorf("record sale %q: %w", e.Symbol, err)
		}

		if err := insertHistory(tx, TradeRecord{
			TradeID:    id.New(),
			BatchID:    batchID,
			Side:       SideSell,
			Symbol:     e.Symbol,
			Amount:     e.Amount,
			Price:      e.SalePrice(),
			ExecutedAt: e.SoldAt,
		}); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SettleBuyBacks applies a completed buy-back batch: removes the entry for
// every settled leg, adds delta to the realized P/L accumulator, and appends
// history rows. One transaction, so a crash can never remove entries without
// the P/L update landing, or the reverse.
func (s *SQLite) SettleBuyBacks(batchID string, delta decimal.Decimal, legs []TradeRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, leg := range legs {
		if _, err := tx.Exec(`DELETE FROM sold_positions WHERE symbol = ?`, leg.Symbol); err != nil {
			return fmt.Errorf("settle %q: %w", leg.Symbol, err)
		}

		leg.TradeID = id.New()
		leg.BatchID = batchID
		leg.Side = SideBuyBack
		if err := insertHistory(tx, leg); err != nil {
			return err
		}
	}

	var raw string
	if err := tx.QueryRow(`SELECT total FROM realized_pl WHERE id = 1`).Scan(&raw); err != nil {
		return fmt.Errorf("read realized P/L: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parse realized P/L %q: %w", raw, err)
	}

	total = total.Add(delta)
	if _, err := tx.Exec(`UPDATE realized_pl SET total = ? WHERE id = 1`, total.String()); err != nil {
		return fmt.Errorf("update realized P/L: %w", err)
	}

	return tx.Commit()
}

func insertHistory(tx *sql.Tx, rec TradeRecord) error {
	_, err := tx.Exec(`
		INSERT INTO trade_history (trade_id, batch_id, side, symbol, amount, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TradeID, rec.BatchID, rec.Side, rec.Symbol,
		rec.Amount.String(), rec.Price.String(), rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("record history %q: %w", rec.Symbol, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
