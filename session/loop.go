// Package session runs the decision loop: fetch a quote, score it,
// decide, size, apply, persist. One cycle runs to completion before the
// next begins; cancellation is only honored at cycle boundaries so the
// ledger is never left half-applied.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/decision"
	"github.com/rustyeddy/papertrader/internal/id"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/portfolio"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/signal"
)

// Loop owns the single-threaded session state. Construct with New, then
// call Run once.
type Loop struct {
	cfg     *config.Config
	source  market.QuoteSource
	scorers []signal.Scorer
	orch    *decision.Orchestrator
	ledger  *portfolio.Ledger
	window  *market.PriceWindow
	journal journal.Journal
	log     zerolog.Logger

	snapshotPath string
	dryRun       bool

	consecutiveFails int
	totalFails       int
	degraded         bool
	lastCycle        time.Time
}

// Options carries the collaborators the loop does not build itself.
type Options struct {
	Config   *config.Config
	Source   market.QuoteSource
	Scorers  []signal.Scorer
	Journal  journal.Journal
	Logger   zerolog.Logger
	Resume   bool // reload state from the snapshot before the first tick
	DryRun   bool // never write the snapshot
}

func New(opts Options) (*Loop, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("session: config is required")
	}
	if opts.Source == nil {
		return nil, errors.New("session: quote source is required")
	}
	if opts.Journal == nil {
		opts.Journal = journal.Noop{}
	}

	orch, err := decision.New(cfg.Decision)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		cfg:          cfg,
		source:       opts.Source,
		scorers:      opts.Scorers,
		orch:         orch,
		journal:      opts.Journal,
		log:          opts.Logger,
		snapshotPath: cfg.Snapshot.Path,
		dryRun:       opts.DryRun,
	}

	if opts.Resume {
		if err := l.restore(); err != nil {
			return nil, err
		}
	} else {
		l.ledger, err = portfolio.NewLedger(cfg.Session.StartingCapital)
		if err != nil {
			return nil, err
		}
		l.window, err = market.NewPriceWindow(cfg.Session.WindowCapacity)
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

func (l *Loop) restore() error {
	snap, err := portfolio.LoadSnapshot(l.snapshotPath)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	l.ledger, err = portfolio.RestoreLedger(snap)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	l.window, err = market.RestoreWindow(l.cfg.Session.WindowCapacity, snap.Window)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	l.consecutiveFails = snap.ConsecutiveFailures
	l.totalFails = snap.TotalFailures
	l.degraded = snap.Degraded
	l.lastCycle = snap.LastCycle

	l.log.Info().
		Time("last_cycle", snap.LastCycle).
		Float64("cash", snap.Cash).
		Float64("position_qty", snap.Position.Quantity).
		Int("trades", len(snap.Trades)).
		Msg("resumed from snapshot")
	return nil
}

// Ledger exposes the portfolio for inspection after Run returns.
func (l *Loop) Ledger() *portfolio.Ledger { return l.ledger }

// Degraded reports whether the loop is in HOLD-only mode.
func (l *Loop) Degraded() bool { return l.degraded }

// RunOptions bounds a run by cycle count, elapsed time, or both. Zero
// values mean unbounded.
type RunOptions struct {
	Cycles   int
	Duration time.Duration
}

// Run executes decision cycles until the bound or the context expires.
// The context is checked once per cycle boundary, never mid-cycle. A
// ledger invariant violation halts the loop with an error; everything
// else is recovered in-cycle.
func (l *Loop) Run(ctx context.Context, opts RunOptions) error {
	var deadline time.Time
	if opts.Duration > 0 {
		deadline = time.Now().Add(opts.Duration)
	}

	interval := l.cfg.Session.Interval.Std()
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			l.log.Info().Msg("stop signal received, shutting down")
			return nil
		}
		if opts.Cycles > 0 && n >= opts.Cycles {
			return nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil
		}

		if err := l.runCycle(ctx); err != nil {
			return err
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}
	}
}

// runCycle executes one full decision cycle and persists the snapshot on
// completion. Only ledger contract violations propagate as errors.
func (l *Loop) runCycle(ctx context.Context) error {
	cycleID := id.New()

	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.Session.QuoteTimeout.Std())
	quote, err := l.source.Fetch(fetchCtx)
	cancel()
	if err != nil {
		l.recordFailure(err)
		return l.persist()
	}
	l.consecutiveFails = 0

	if err := l.window.Append(quote.Time, quote.Last); err != nil {
		// Out-of-order quotes are a data error: skip the cycle.
		l.log.Warn().Err(err).Msg("dropping out-of-order quote")
		return l.persist()
	}
	l.lastCycle = quote.Time

	rec := journal.CycleRecord{
		CycleID: cycleID,
		Time:    quote.Time,
		Bid:     quote.Bid,
		Ask:     quote.Ask,
		Last:    quote.Last,
	}

	// Stop-loss enforcement precedes the decision: a breached stop exits
	// the position at the breach price regardless of what the engines say.
	stopExit := false
	if risk.StopBreached(l.ledger.Position(), quote.Bid) {
		if err := l.forcedExit(quote, &rec); err != nil {
			return err
		}
		stopExit = true
	}

	scores := l.collectScores(&rec)
	dec := l.orch.Decide(scores)
	rec.Composite = dec.Composite

	switch {
	case stopExit:
		// The exit was this cycle's action; the decision is recorded but
		// not applied.
		rec.Action = decision.Sell.String()
	case l.degraded && dec.Action != decision.Hold:
		rec.Action = decision.Hold.String()
		rec.Reason = "degraded mode, holding"
	default:
		rec.Action = dec.Action.String()
		rec.Reason = dec.Reason
		if err := l.execute(quote, dec, &rec); err != nil {
			return err
		}
	}

	sum := l.ledger.Summary(quote.Last)
	rec.Cash = sum.Cash
	rec.PositionQty = sum.PositionQty
	rec.Equity = sum.Equity

	if err := l.journal.RecordCycle(rec); err != nil {
		l.log.Error().Err(err).Msg("journal cycle record failed")
	}

	l.log.Info().
		Str("action", rec.Action).
		Float64("composite", rec.Composite).
		Float64("confidence", rec.Confidence).
		Float64("equity", rec.Equity).
		Str("reason", rec.Reason).
		Msg("cycle complete")

	// A fully completed cycle on a live feed ends degraded mode; the
	// cycle itself was still HOLD-only.
	if l.degraded {
		l.degraded = false
		l.log.Info().Msg("quote feed recovered, leaving degraded mode")
	}

	return l.persist()
}

// collectScores runs every engine; an engine that cannot score this
// window contributes a neutral zero instead of failing the cycle.
func (l *Loop) collectScores(rec *journal.CycleRecord) []signal.Score {
	scores := make([]signal.Score, 0, len(l.scorers))
	for _, sc := range l.scorers {
		s, err := sc.Score(l.window)
		if err != nil {
			if !errors.Is(err, market.ErrInsufficientData) {
				l.log.Warn().Err(err).Str("engine", sc.Name()).Msg("engine error, scoring neutral")
			}
			s = signal.Score{Engine: sc.Name()}
		}
		scores = append(scores, s)

		switch s.Engine {
		case signal.EngineTrend:
			rec.TrendScore = s.Value
		case signal.EngineMomentum:
			rec.MomentumScore = s.Value
		case signal.EngineSystematic:
			rec.SystematicScore = s.Value
		case signal.EngineLearned:
			rec.LearnedScore = s.Value
			rec.Confidence = s.Confidence
		}
	}
	return scores
}

// execute applies the decision to the ledger through the risk manager.
// Risk rejections and no-op actions downgrade to HOLD with a reason;
// ledger contract violations propagate.
func (l *Loop) execute(quote market.Quote, dec decision.Decision, rec *journal.CycleRecord) error {
	switch dec.Action {
	case decision.Buy:
		if !l.ledger.Position().Flat() {
			rec.Action = decision.Hold.String()
			rec.Reason = "position already open"
			return nil
		}
		entry := quote.Ask
		sizing, err := risk.SizePosition(entry, l.ledger.Summary(quote.Last), l.cfg.Risk)
		if err != nil {
			if errors.Is(err, risk.ErrRiskLimit) {
				rec.Action = decision.Hold.String()
				rec.Reason = err.Error()
				l.log.Warn().Str("reason", err.Error()).Msg("trade rejected by risk limits")
				return nil
			}
			return err
		}
		fees := l.cfg.Fees.For(sizing.Quantity * entry)
		tr, err := l.ledger.Buy(quote.Time, sizing.Quantity, entry, fees, sizing.StopPrice,
			fmt.Sprintf("composite %.3f", dec.Composite))
		if err != nil {
			if errors.Is(err, portfolio.ErrInsufficientCash) || errors.Is(err, portfolio.ErrInvalidTrade) {
				rec.Action = decision.Hold.String()
				rec.Reason = err.Error()
				l.log.Warn().Str("reason", err.Error()).Msg("buy not admissible")
				return nil
			}
			return fmt.Errorf("ledger invariant violated on buy: %w", err)
		}
		rec.Quantity = tr.Quantity
		l.journalTrade(tr)

	case decision.Sell:
		pos := l.ledger.Position()
		if pos.Flat() {
			rec.Action = decision.Hold.String()
			rec.Reason = "no position to sell"
			return nil
		}
		price := quote.Bid
		fees := l.cfg.Fees.For(pos.Quantity * price)
		tr, err := l.ledger.Sell(quote.Time, pos.Quantity, price, fees,
			fmt.Sprintf("composite %.3f", dec.Composite))
		if err != nil {
			return fmt.Errorf("ledger invariant violated on sell: %w", err)
		}
		rec.Quantity = tr.Quantity
		l.journalTrade(tr)
	}
	return nil
}

// forcedExit closes the full position at the breach price. Originated by
// risk monitoring, not the orchestrator, but applied identically.
func (l *Loop) forcedExit(quote market.Quote, rec *journal.CycleRecord) error {
	pos := l.ledger.Position()
	price := quote.Bid
	fees := l.cfg.Fees.For(pos.Quantity * price)

	tr, err := l.ledger.Sell(quote.Time, pos.Quantity, price, fees, "stop-loss breach")
	if err != nil {
		return fmt.Errorf("ledger invariant violated on stop-loss exit: %w", err)
	}
	l.journalTrade(tr)

	l.log.Warn().
		Float64("stop", pos.StopPrice).
		Float64("price", price).
		Float64("realized_pnl", tr.RealizedPnL).
		Msg("stop-loss breached, position closed")
	rec.Quantity = tr.Quantity
	rec.Reason = "stop-loss exit"
	return nil
}

func (l *Loop) journalTrade(tr portfolio.Trade) {
	err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:     tr.ID,
		Time:        tr.Time,
		Side:        string(tr.Side),
		Quantity:    tr.Quantity,
		Price:       tr.Price,
		Fees:        tr.Fees,
		RealizedPnL: tr.RealizedPnL,
		Reason:      tr.Reason,
	})
	if err != nil {
		l.log.Error().Err(err).Msg("journal trade record failed")
	}
}

// recordFailure counts a fetch failure and flips into degraded HOLD-only
// mode once the configured streak is reached. The transition is logged
// exactly once.
func (l *Loop) recordFailure(err error) {
	l.consecutiveFails++
	l.totalFails++
	l.log.Warn().
		Err(err).
		Int("consecutive", l.consecutiveFails).
		Msg("quote fetch failed, cycle skipped")

	if !l.degraded && l.consecutiveFails >= l.cfg.Session.MaxConsecutiveFails {
		l.degraded = true
		l.log.Error().
			Int("failures", l.consecutiveFails).
			Msg("entering degraded HOLD-only mode")
	}
}

// persist writes the post-cycle snapshot. The snapshot is only ever
// written after a cycle fully completes, so a restart never replays a
// half-applied trade.
func (l *Loop) persist() error {
	if l.dryRun {
		return nil
	}
	snap := l.ledger.Snapshot()
	snap.Window = l.window.Tail(l.window.Capacity())
	snap.ConsecutiveFailures = l.consecutiveFails
	snap.TotalFailures = l.totalFails
	snap.Degraded = l.degraded
	snap.LastCycle = l.lastCycle

	if err := portfolio.SaveSnapshot(l.snapshotPath, snap); err != nil {
		l.log.Error().Err(err).Msg("snapshot write failed")
	}
	return nil
}
