package journal

const Schema = `
CREATE TABLE IF NOT EXISTS cycles (
	cycle_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	bid REAL NOT NULL,
	ask REAL NOT NULL,
	last REAL NOT NULL,
	trend REAL NOT NULL,
	momentum REAL NOT NULL,
	systematic REAL NOT NULL,
	learned REAL NOT NULL,
	confidence REAL NOT NULL,
	composite REAL NOT NULL,
	action TEXT NOT NULL,
	quantity REAL NOT NULL,
	reason TEXT NOT NULL,
	cash REAL NOT NULL,
	position_qty REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	fees REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_time ON cycles(time);
CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
`
