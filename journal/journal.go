// Package journal is the append-only audit trail: one cycle record per
// tick and one trade record per fill. A test harness can replay it to
// verify the engine's determinism.
package journal

import "time"

// CycleRecord captures everything that went into one decision cycle.
type CycleRecord struct {
	CycleID string
	Time    time.Time

	Bid  float64
	Ask  float64
	Last float64

	TrendScore      float64
	MomentumScore   float64
	SystematicScore float64
	LearnedScore    float64
	Confidence      float64

	Composite float64
	Action    string
	Quantity  float64
	Reason    string // rejection/skip reason, empty on an executed trade

	Cash        float64
	PositionQty float64
	Equity      float64
}

// TradeRecord is one simulated fill.
type TradeRecord struct {
	TradeID     string
	Time        time.Time
	Side        string
	Quantity    float64
	Price       float64
	Fees        float64
	RealizedPnL float64
	Reason      string
}

type Journal interface {
	RecordCycle(CycleRecord) error
	RecordTrade(TradeRecord) error
	Close() error
}

// Noop discards everything. Used by dry runs.
type Noop struct{}

func (Noop) RecordCycle(CycleRecord) error { return nil }
func (Noop) RecordTrade(TradeRecord) error { return nil }
func (Noop) Close() error                  { return nil }
