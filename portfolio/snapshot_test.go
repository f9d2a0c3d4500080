package portfolio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/papertrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)
	_, err = l.Buy(t0, 10, 100, 1, 95, "entry")
	require.NoError(t, err)
	_, err = l.Sell(t0.Add(time.Minute), 4, 105, 1, "trim")
	require.NoError(t, err)

	s := l.Snapshot()
	s.Window = []market.Sample{
		{Time: t0, Price: 100},
		{Time: t0.Add(time.Minute), Price: 105},
	}
	s.ConsecutiveFailures = 2
	s.TotalFailures = 7
	s.LastCycle = t0.Add(time.Minute)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, SaveSnapshot(path, s))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, got.Version)
	assert.InDelta(t, s.Cash, got.Cash, 1e-9)
	assert.InDelta(t, s.Position.Quantity, got.Position.Quantity, 1e-9)
	assert.InDelta(t, s.RealizedPnL, got.RealizedPnL, 1e-9)
	assert.Len(t, got.Trades, 2)
	assert.Len(t, got.Window, 2)
	assert.Equal(t, 2, got.ConsecutiveFailures)
	assert.Equal(t, 7, got.TotalFailures)

	restored, err := RestoreLedger(got)
	require.NoError(t, err)
	assert.InDelta(t, l.Cash(), restored.Cash(), 1e-9)
	assert.InDelta(t, l.Position().Quantity, restored.Position().Quantity, 1e-9)
	assert.InDelta(t, l.Position().AvgEntryPrice, restored.Position().AvgEntryPrice, 1e-9)
	assert.InDelta(t, l.RealizedPnL(), restored.RealizedPnL(), 1e-9)
	assert.Len(t, restored.Trades(), 2)
}

func TestSaveSnapshotReplacesAtomically(t *testing.T) {
	l, err := NewLedger(10000)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	first := l.Snapshot()
	require.NoError(t, SaveSnapshot(path, first))

	_, err = l.Buy(t0, 1, 100, 0, 95, "entry")
	require.NoError(t, err)
	require.NoError(t, SaveSnapshot(path, l.Snapshot()))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.InDelta(t, l.Cash(), got.Cash, 1e-9)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSnapshot(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	garbled := filepath.Join(dir, "garbled.json")
	require.NoError(t, os.WriteFile(garbled, []byte("{not json"), 0o644))
	_, err = LoadSnapshot(garbled)
	assert.Error(t, err)

	wrongVersion := filepath.Join(dir, "version.json")
	require.NoError(t, os.WriteFile(wrongVersion,
		[]byte(`{"version":99,"starting_capital":10000,"cash":10000}`), 0o644))
	_, err = LoadSnapshot(wrongVersion)
	assert.ErrorContains(t, err, "version")

	negativeCash := filepath.Join(dir, "cash.json")
	require.NoError(t, os.WriteFile(negativeCash,
		[]byte(`{"version":1,"starting_capital":10000,"cash":-5}`), 0o644))
	_, err = LoadSnapshot(negativeCash)
	assert.ErrorContains(t, err, "cash")
}

func TestRestoreLedgerRejectsInvalid(t *testing.T) {
	s := Snapshot{Version: SnapshotVersion, StartingCapital: 0, Cash: 100}
	_, err := RestoreLedger(s)
	assert.Error(t, err)

	s = Snapshot{Version: SnapshotVersion, StartingCapital: 100, Cash: 100,
		Position: Position{Quantity: -1}}
	_, err = RestoreLedger(s)
	assert.Error(t, err)
}
