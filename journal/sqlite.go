package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordCycle(c CycleRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO cycles
		(cycle_id, time, bid, ask, last,
		 trend, momentum, systematic, learned, confidence,
		 composite, action, quantity, reason,
		 cash, position_qty, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CycleID, c.Time, c.Bid, c.Ask, c.Last,
		c.TrendScore, c.MomentumScore, c.SystematicScore, c.LearnedScore, c.Confidence,
		c.Composite, c.Action, c.Quantity, c.Reason,
		c.Cash, c.PositionQty, c.Equity,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, side, quantity, price, fees, realized_pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time, t.Side, t.Quantity, t.Price, t.Fees, t.RealizedPnL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
