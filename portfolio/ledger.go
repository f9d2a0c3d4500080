// Package portfolio is the paper-trading bookkeeper. The Ledger is the
// single owner of cash, position, and trade history; nothing else mutates
// them, and every mutation appends exactly one Trade.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/internal/id"
)

var (
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrNoPosition           = errors.New("no open position")
	ErrInsufficientQuantity = errors.New("insufficient position quantity")
	ErrInvalidTrade         = errors.New("invalid trade")
)

const epsilon = 1e-9

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Position is the current holding. A zero Quantity means flat, and the
// other fields are meaningless while flat.
type Position struct {
	Quantity      float64 `json:"quantity"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	StopPrice     float64 `json:"stop_price"`
}

func (p Position) Flat() bool { return p.Quantity <= epsilon }

// Trade is one immutable ledger entry.
type Trade struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Side        Side      `json:"side"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Fees        float64   `json:"fees"`
	RealizedPnL float64   `json:"realized_pnl"`
	Reason      string    `json:"reason"`
	CashAfter   float64   `json:"cash_after"`
}

// Ledger holds the virtual portfolio. It is written by exactly one
// goroutine (the session loop), so it carries no lock; external readers
// consume persisted snapshots instead.
type Ledger struct {
	startingCapital float64
	cash            float64
	position        Position
	realized        float64
	trades          []Trade
}

func NewLedger(startingCapital float64) (*Ledger, error) {
	if startingCapital <= 0 {
		return nil, fmt.Errorf("starting capital must be positive, got %v", startingCapital)
	}
	return &Ledger{
		startingCapital: startingCapital,
		cash:            startingCapital,
	}, nil
}

func (l *Ledger) StartingCapital() float64 { return l.startingCapital }
func (l *Ledger) Cash() float64            { return l.cash }
func (l *Ledger) Position() Position       { return l.position }
func (l *Ledger) RealizedPnL() float64     { return l.realized }

// Trades returns a copy of the trade history, oldest first.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Unrealized marks the open position against the given price.
func (l *Ledger) Unrealized(mark float64) float64 {
	if l.position.Flat() {
		return 0
	}
	return l.position.Quantity * (mark - l.position.AvgEntryPrice)
}

// Equity is cash plus the marked value of the open position.
func (l *Ledger) Equity(mark float64) float64 {
	return l.cash + l.position.Quantity*mark
}

// Summary is the read-only view the risk manager sizes against.
type Summary struct {
	Cash          float64
	Equity        float64
	RealizedPnL   float64
	PositionQty   float64
	PositionValue float64
	// OpenRisk is the loss taken if the open position is stopped out at
	// its attached stop price from the given mark.
	OpenRisk float64
}

func (l *Ledger) Summary(mark float64) Summary {
	s := Summary{
		Cash:        l.cash,
		Equity:      l.Equity(mark),
		RealizedPnL: l.realized,
	}
	if !l.position.Flat() {
		s.PositionQty = l.position.Quantity
		s.PositionValue = l.position.Quantity * mark
		if risk := l.position.Quantity * (mark - l.position.StopPrice); risk > 0 {
			s.OpenRisk = risk
		}
	}
	return s
}

// Buy opens or adds to the long position. Cash is debited qty*price+fees;
// a buy that would push cash negative is rejected before any mutation.
func (l *Ledger) Buy(t time.Time, qty, price, fees, stop float64, reason string) (Trade, error) {
	if err := checkFill(qty, price, fees); err != nil {
		return Trade{}, err
	}

	cost := qty*price + fees
	if cost > l.cash+epsilon {
		return Trade{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, cost, l.cash)
	}

	newQty := l.position.Quantity + qty
	newAvg := (l.position.Quantity*l.position.AvgEntryPrice + qty*price) / newQty

	l.cash -= cost
	l.position = Position{
		Quantity:      newQty,
		AvgEntryPrice: newAvg,
		StopPrice:     stop,
	}

	return l.record(t, SideBuy, qty, price, fees, 0, reason), nil
}

// Sell closes all or part of the position, realizing P&L for the closed
// portion as qty*(price-avg_entry) - fees.
func (l *Ledger) Sell(t time.Time, qty, price, fees float64, reason string) (Trade, error) {
	if err := checkFill(qty, price, fees); err != nil {
		return Trade{}, err
	}
	if l.position.Flat() {
		return Trade{}, ErrNoPosition
	}
	if qty > l.position.Quantity+epsilon {
		return Trade{}, fmt.Errorf("%w: want %v, have %v",
			ErrInsufficientQuantity, qty, l.position.Quantity)
	}
	if qty > l.position.Quantity {
		qty = l.position.Quantity
	}

	pnl := qty*(price-l.position.AvgEntryPrice) - fees
	l.cash += qty*price - fees
	l.realized += pnl

	l.position.Quantity -= qty
	if l.position.Flat() {
		l.position = Position{}
	}

	return l.record(t, SideSell, qty, price, fees, pnl, reason), nil
}

func (l *Ledger) record(t time.Time, side Side, qty, price, fees, pnl float64, reason string) Trade {
	tr := Trade{
		ID:          id.New(),
		Time:        t,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Fees:        fees,
		RealizedPnL: pnl,
		Reason:      reason,
		CashAfter:   l.cash,
	}
	l.trades = append(l.trades, tr)
	return tr
}

func checkFill(qty, price, fees float64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidTrade, qty)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %v", ErrInvalidTrade, price)
	}
	if fees < 0 {
		return fmt.Errorf("%w: fees must be non-negative, got %v", ErrInvalidTrade, fees)
	}
	return nil
}
