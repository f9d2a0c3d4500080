package market

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimSourceDeterministic(t *testing.T) {
	cfg := SimConfig{
		Seed:       42,
		StartPrice: 100,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Step:       time.Second,
	}
	a := NewSimSource(cfg)
	b := NewSimSource(cfg)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		qa, err := a.Fetch(ctx)
		require.NoError(t, err)
		qb, err := b.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, qa, qb, "same seed must yield the same path")
		assert.Greater(t, qa.Ask, qa.Bid)
		assert.Greater(t, qa.Last, 0.0)
	}
}

func TestSimSourceHonorsContext(t *testing.T) {
	s := NewSimSource(SimConfig{Seed: 1, StartPrice: 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx)
	assert.Error(t, err)
}

func TestReplaySourceOrderAndExhaustion(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	quotes := []Quote{
		{Time: t0, Bid: 99, Ask: 101, Last: 100},
		{Time: t0.Add(time.Second), Bid: 100, Ask: 102, Last: 101},
	}
	r := NewReplaySource(quotes)

	ctx := context.Background()
	q, err := r.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, quotes[0], q)
	assert.Equal(t, 1, r.Remaining())

	q, err = r.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, quotes[1], q)

	_, err = r.Fetch(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestLoadReplayCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.csv")
	data := "time,bid,ask,last\n" +
		"2024-01-01T00:00:00Z,99.5,100.5,100\n" +
		"2024-01-01T00:00:05Z,100.5,101.5,101\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	r, err := LoadReplayCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Remaining())

	q, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99.5, q.Bid)
	assert.Equal(t, 100.0, q.Last)
}

func TestLoadCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closes.csv")
	data := "close\n100\n101.5\n99.25\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	closes, err := LoadCloses(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 101.5, 99.25}, closes)
}

func TestLoadClosesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("close\n"), 0644))

	_, err := LoadCloses(path)
	assert.Error(t, err)
}
