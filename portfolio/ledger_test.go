package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewLedger(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, l.Cash())
	assert.True(t, l.Position().Flat())
	assert.Empty(t, l.Trades())

	_, err = NewLedger(0)
	assert.Error(t, err)
	_, err = NewLedger(-100)
	assert.Error(t, err)
}

func TestBuySellRoundTrip(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	tr, err := l.Buy(t0, 10, 100, 1, 95, "entry")
	require.NoError(t, err)
	assert.Equal(t, SideBuy, tr.Side)
	assert.NotEmpty(t, tr.ID)
	assert.InDelta(t, 10000-1001, l.Cash(), 1e-9)
	assert.InDelta(t, 100, l.Position().AvgEntryPrice, 1e-9)
	assert.InDelta(t, 95, l.Position().StopPrice, 1e-9)

	tr, err = l.Sell(t0.Add(time.Minute), 10, 110, 1, "exit")
	require.NoError(t, err)
	assert.Equal(t, SideSell, tr.Side)
	// 10 x (110-100) - 1 in fees.
	assert.InDelta(t, 99, tr.RealizedPnL, 1e-9)
	assert.InDelta(t, 99, l.RealizedPnL(), 1e-9)
	assert.True(t, l.Position().Flat())
	assert.InDelta(t, 10000-1001+1099, l.Cash(), 1e-9)
	assert.Len(t, l.Trades(), 2)
}

func TestBuyAveragesEntry(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	_, err = l.Buy(t0, 10, 100, 0, 95, "entry")
	require.NoError(t, err)
	_, err = l.Buy(t0.Add(time.Minute), 10, 120, 0, 114, "add")
	require.NoError(t, err)

	assert.InDelta(t, 20, l.Position().Quantity, 1e-9)
	assert.InDelta(t, 110, l.Position().AvgEntryPrice, 1e-9)
	// The most recent stop wins.
	assert.InDelta(t, 114, l.Position().StopPrice, 1e-9)
}

func TestBuyInsufficientCash(t *testing.T) {
	l, err := NewLedger(1000)
	require.NoError(t, err)

	_, err = l.Buy(t0, 11, 100, 0, 95, "too big")
	assert.ErrorIs(t, err, ErrInsufficientCash)
	// Rejected before mutation.
	assert.Equal(t, 1000.0, l.Cash())
	assert.True(t, l.Position().Flat())
	assert.Empty(t, l.Trades())
}

func TestSellErrors(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	_, err = l.Sell(t0, 1, 100, 0, "flat")
	assert.ErrorIs(t, err, ErrNoPosition)

	_, err = l.Buy(t0, 5, 100, 0, 95, "entry")
	require.NoError(t, err)

	_, err = l.Sell(t0, 6, 100, 0, "too much")
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
}

func TestInvalidFills(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	_, err = l.Buy(t0, 0, 100, 0, 95, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)
	_, err = l.Buy(t0, 1, 0, 0, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)
	_, err = l.Buy(t0, 1, 100, -1, 95, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)
}

func TestPartialExit(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	_, err = l.Buy(t0, 10, 100, 0, 95, "entry")
	require.NoError(t, err)

	tr, err := l.Sell(t0, 4, 105, 0, "trim")
	require.NoError(t, err)
	assert.InDelta(t, 20, tr.RealizedPnL, 1e-9)
	assert.InDelta(t, 6, l.Position().Quantity, 1e-9)
	assert.InDelta(t, 100, l.Position().AvgEntryPrice, 1e-9, "entry unchanged on partial exit")
}

func TestEquityAndSummary(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, l.Equity(123))
	assert.Equal(t, 0.0, l.Unrealized(123))

	_, err = l.Buy(t0, 10, 100, 0, 95, "entry")
	require.NoError(t, err)

	assert.InDelta(t, 100, l.Unrealized(110), 1e-9)
	assert.InDelta(t, 9000+1100, l.Equity(110), 1e-9)

	s := l.Summary(110)
	assert.InDelta(t, 9000, s.Cash, 1e-9)
	assert.InDelta(t, 10100, s.Equity, 1e-9)
	assert.InDelta(t, 10, s.PositionQty, 1e-9)
	assert.InDelta(t, 1100, s.PositionValue, 1e-9)
	// 10 x (110 - 95) at risk before the stop catches.
	assert.InDelta(t, 150, s.OpenRisk, 1e-9)

	// Marked below the stop there is no remaining stop risk.
	s = l.Summary(90)
	assert.Equal(t, 0.0, s.OpenRisk)
}

func TestTradesReturnsCopy(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)
	_, err = l.Buy(t0, 1, 100, 0, 95, "entry")
	require.NoError(t, err)

	got := l.Trades()
	got[0].Quantity = 999
	assert.InDelta(t, 1, l.Trades()[0].Quantity, 1e-9)
}
