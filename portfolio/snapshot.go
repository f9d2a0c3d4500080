package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// SnapshotVersion guards against loading snapshots written by an
// incompatible layout.
const SnapshotVersion = 1

// Snapshot is the durable record written after every completed cycle. It
// is self-describing: loading it fully reconstructs resumable state
// without replaying historical quotes.
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	StartingCapital float64  `json:"starting_capital"`
	Cash            float64  `json:"cash"`
	Position        Position `json:"position"`
	RealizedPnL     float64  `json:"realized_pnl"`
	Trades          []Trade  `json:"trades"`

	Window []market.Sample `json:"window"`

	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalFailures       int       `json:"total_failures"`
	Degraded            bool      `json:"degraded"`
	LastCycle           time.Time `json:"last_cycle"`
}

// Snapshot captures the ledger's current state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Version:         SnapshotVersion,
		SavedAt:         time.Now().UTC(),
		StartingCapital: l.startingCapital,
		Cash:            l.cash,
		Position:        l.position,
		RealizedPnL:     l.realized,
		Trades:          l.Trades(),
	}
}

// RestoreLedger rebuilds a ledger from a loaded snapshot.
func RestoreLedger(s Snapshot) (*Ledger, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &Ledger{
		startingCapital: s.StartingCapital,
		cash:            s.Cash,
		position:        s.Position,
		realized:        s.RealizedPnL,
		trades:          append([]Trade(nil), s.Trades...),
	}, nil
}

func (s Snapshot) validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if s.StartingCapital <= 0 {
		return fmt.Errorf("snapshot starting capital must be positive, got %v", s.StartingCapital)
	}
	if s.Cash < 0 {
		return fmt.Errorf("snapshot cash is negative: %v", s.Cash)
	}
	if s.Position.Quantity < 0 {
		return fmt.Errorf("snapshot position quantity is negative: %v", s.Position.Quantity)
	}
	return nil
}

// SaveSnapshot writes the snapshot atomically: a temp file in the same
// directory, then rename. A crash mid-write never corrupts the previous
// snapshot.
func SaveSnapshot(path string, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads and validates a snapshot from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := s.validate(); err != nil {
		return Snapshot{}, fmt.Errorf("corrupt snapshot %s: %w", path, err)
	}
	return s, nil
}
