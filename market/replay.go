package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// ErrExhausted is returned by a ReplaySource once every recorded quote has
// been served.
var ErrExhausted = errors.New("replay exhausted")

// ReplaySource serves a recorded quote sequence in order. It backs
// deterministic end-to-end runs and audit-trail replays.
type ReplaySource struct {
	quotes []Quote
	next   int
}

func NewReplaySource(quotes []Quote) *ReplaySource {
	return &ReplaySource{quotes: quotes}
}

// LoadReplayCSV reads quotes from a CSV file with a header row of
// time,bid,ask,last. Time is RFC3339.
func LoadReplayCSV(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("read replay header: %w", err)
	}

	var quotes []Quote
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read replay line %d: %w", line, err)
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("replay line %d: want 4 fields, got %d", line, len(rec))
		}
		t, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("replay line %d: bad time: %w", line, err)
		}
		var vals [3]float64
		for i := 0; i < 3; i++ {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("replay line %d: bad price: %w", line, err)
			}
		}
		quotes = append(quotes, Quote{Time: t, Bid: vals[0], Ask: vals[1], Last: vals[2]})
	}
	return NewReplaySource(quotes), nil
}

func (r *ReplaySource) Fetch(ctx context.Context) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	if r.next >= len(r.quotes) {
		return Quote{}, ErrExhausted
	}
	q := r.quotes[r.next]
	r.next++
	return q, nil
}

// Remaining reports how many quotes are left to serve.
func (r *ReplaySource) Remaining() int { return len(r.quotes) - r.next }

// LoadCloses reads a single-column (or first-column) CSV of close prices,
// skipping a header row when the first field does not parse as a number.
// Used by offline model training.
func LoadCloses(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var closes []float64
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price file: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		v, perr := strconv.ParseFloat(rec[len(rec)-1], 64)
		if perr != nil {
			if first {
				first = false
				continue // header
			}
			return nil, fmt.Errorf("parse price %q: %w", rec[len(rec)-1], perr)
		}
		first = false
		closes = append(closes, v)
	}
	if len(closes) == 0 {
		return nil, errors.New("price file contains no prices")
	}
	return closes, nil
}
