package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	cycles *csv.Writer
	trades *csv.Writer
	cf, tf *os.File
}

func NewCSV(cyclesPath, tradesPath string) (*CSVJournal, error) {
	cf, err := os.Create(cyclesPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		cf.Close()
		return nil, err
	}

	cw := csv.NewWriter(cf)
	tw := csv.NewWriter(tf)

	if err := cw.Write([]string{
		"cycle_id", "time", "bid", "ask", "last",
		"trend", "momentum", "systematic", "learned", "confidence",
		"composite", "action", "quantity", "reason",
		"cash", "position_qty", "equity",
	}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{
		"trade_id", "time", "side", "quantity", "price", "fees", "realized_pnl", "reason",
	}); err != nil {
		return nil, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{cycles: cw, trades: tw, cf: cf, tf: tf}, nil
}

func (j *CSVJournal) RecordCycle(c CycleRecord) error {
	err := j.cycles.Write([]string{
		c.CycleID,
		c.Time.Format(time.RFC3339),
		f(c.Bid), f(c.Ask), f(c.Last),
		f(c.TrendScore), f(c.MomentumScore), f(c.SystematicScore), f(c.LearnedScore), f(c.Confidence),
		f(c.Composite), c.Action, f(c.Quantity), c.Reason,
		f(c.Cash), f(c.PositionQty), f(c.Equity),
	})
	if err != nil {
		return err
	}
	j.cycles.Flush()
	return j.cycles.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Time.Format(time.RFC3339),
		t.Side,
		f(t.Quantity), f(t.Price), f(t.Fees), f(t.RealizedPnL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.cycles.Flush()
	if err := j.cycles.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	if err := j.cf.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
