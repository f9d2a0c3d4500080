package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/mlmodel"
	"github.com/rustyeddy/papertrader/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a trading session from a config file",
	Long: `Run an unattended paper-trading session using settings from a
configuration file.

The session polls the quote source on a fixed interval, scores each quote
through the signal engines, and applies risk-bounded decisions to the
virtual portfolio. State is snapshotted after every completed cycle, so a
resumed session picks up exactly where the last one stopped.

Examples:
  papertrader run --config trader.yaml --duration 8h
  papertrader run --config trader.yaml --cycles 100 --dry-run
  papertrader run --config trader.yaml --resume`,
	RunE: runRun,
}

var (
	runConfigPath string
	runCycles     int
	runDuration   time.Duration
	runResume     bool
	runDryRun     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().IntVar(&runCycles, "cycles", 0, "stop after this many cycles (0 = unbounded)")
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop after this much elapsed time (0 = unbounded)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "resume from the persisted snapshot")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "run without journaling or snapshot writes")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	var model *mlmodel.Model
	if cfg.Model.Path != "" {
		model, err = mlmodel.Load(cfg.Model.Path)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
	} else {
		logger.Warn().Msg("no model configured, learned engine runs neutral")
	}

	j, err := buildJournal(cfg, runDryRun)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	loop, err := session.New(session.Options{
		Config:  cfg,
		Source:  source,
		Scorers: session.DefaultScorers(cfg, model),
		Journal: j,
		Logger:  logger,
		Resume:  runResume,
		DryRun:  runDryRun,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting session for %s (interval %s", cfg.Session.Instrument, cfg.Session.Interval)
	if runCycles > 0 {
		fmt.Printf(", %d cycles", runCycles)
	}
	if runDuration > 0 {
		fmt.Printf(", %s", runDuration)
	}
	fmt.Println(")")

	if err := loop.Run(ctx, session.RunOptions{Cycles: runCycles, Duration: runDuration}); err != nil {
		return fmt.Errorf("session halted: %w", err)
	}

	ledger := loop.Ledger()
	pos := ledger.Position()
	fmt.Printf("\nSession complete:\n")
	fmt.Printf("  Cash: $%.2f\n", ledger.Cash())
	fmt.Printf("  Position: %.4f @ $%.2f\n", pos.Quantity, pos.AvgEntryPrice)
	fmt.Printf("  Realized P&L: $%.2f\n", ledger.RealizedPnL())
	fmt.Printf("  Trades: %d\n", len(ledger.Trades()))
	return nil
}

func buildSource(cfg *config.Config) (market.QuoteSource, error) {
	switch cfg.Source.Type {
	case "replay":
		return market.LoadReplayCSV(cfg.Source.ReplayFile)
	default:
		return market.NewSimSource(market.SimConfig{
			Seed:       cfg.Source.Seed,
			StartPrice: cfg.Source.StartPrice,
			Drift:      cfg.Source.Drift,
			Volatility: cfg.Source.Volatility,
			Step:       cfg.Session.Interval.Std(),
		}), nil
	}
}

func buildJournal(cfg *config.Config, dryRun bool) (journal.Journal, error) {
	if dryRun {
		return journal.Noop{}, nil
	}
	switch strings.ToLower(cfg.Journal.Type) {
	case "csv":
		return journal.NewCSV(cfg.Journal.CyclesFile, cfg.Journal.TradesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Noop{}, nil
	}
}
