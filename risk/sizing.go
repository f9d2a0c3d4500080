package risk

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/papertrader/portfolio"
)

// ErrRiskLimit marks a rejected trade. The wrapped message carries the
// coded reason for the journal.
var ErrRiskLimit = errors.New("risk limit exceeded")

// Sizing is an approved position size plus its attached stop.
type Sizing struct {
	Quantity   float64
	StopPrice  float64
	RiskAmount float64 // dollars lost if the stop is hit
}

// SizePosition computes the admissible quantity for a new long entry.
//
// The risk budget is equity x MaxRiskPerTrade, the per-unit risk is
// entry x StopLossFraction, and the raw quantity is clamped so that the
// position value stays under MaxPositionFraction x equity and aggregate
// open risk stays under MaxPortfolioHeat x equity. A quantity the clamps
// push below MinQuantity is rejected, not approved degenerate.
func SizePosition(entry float64, snap portfolio.Summary, lim Limits) (Sizing, error) {
	if entry <= 0 {
		return Sizing{}, fmt.Errorf("%w: REJ_BAD_ENTRY: entry price must be positive, got %v",
			ErrRiskLimit, entry)
	}
	if snap.Equity <= 0 {
		return Sizing{}, fmt.Errorf("%w: REJ_NO_EQUITY: equity %.2f", ErrRiskLimit, snap.Equity)
	}

	riskBudget := snap.Equity * lim.MaxRiskPerTrade
	perUnitRisk := entry * lim.StopLossFraction
	qty := riskBudget / perUnitRisk

	// Position value cap.
	if maxValue := lim.MaxPositionFraction * snap.Equity; qty*entry > maxValue {
		qty = maxValue / entry
	}

	// Portfolio heat cap: existing open risk plus this trade's risk.
	heatRoom := lim.MaxPortfolioHeat*snap.Equity - snap.OpenRisk
	if heatRoom <= 0 {
		return Sizing{}, fmt.Errorf("%w: REJ_HEAT: open risk %.2f already at heat cap %.2f",
			ErrRiskLimit, snap.OpenRisk, lim.MaxPortfolioHeat*snap.Equity)
	}
	if qty*perUnitRisk > heatRoom {
		qty = heatRoom / perUnitRisk
	}

	// Never size beyond available cash.
	if qty*entry > snap.Cash {
		qty = snap.Cash / entry
	}

	if qty < lim.MinQuantity {
		return Sizing{}, fmt.Errorf("%w: REJ_MIN_QTY: clamped quantity %v below minimum %v",
			ErrRiskLimit, qty, lim.MinQuantity)
	}

	return Sizing{
		Quantity:   qty,
		StopPrice:  StopPrice(entry, lim),
		RiskAmount: qty * perUnitRisk,
	}, nil
}

// StopPrice is the forced-exit level for a long entered at entry.
func StopPrice(entry float64, lim Limits) float64 {
	return entry * (1 - lim.StopLossFraction)
}

// StopBreached reports whether the open long position's stop has been
// breached at the given sell-side price.
func StopBreached(pos portfolio.Position, bid float64) bool {
	if pos.Flat() || pos.StopPrice <= 0 {
		return false
	}
	return bid <= pos.StopPrice
}
