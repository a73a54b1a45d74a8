package ledger

// Money columns are TEXT holding decimal strings; REAL would round-trip
// through float64 and drift the accumulator.
const Schema = `
CREATE TABLE IF NOT EXISTS sold_positions (
	symbol TEXT PRIMARY KEY,
	amount TEXT NOT NULL,
	quoted_sale_price TEXT NOT NULL,
	executed_sale_price TEXT,
	sold_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS realized_pl (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	total TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trade_history (
	trade_id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	side TEXT NOT NULL,
	symbol TEXT NOT NULL,
	amount TEXT NOT NULL,
	price TEXT NOT NULL,
	executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_batch ON trade_history(batch_id);
`
