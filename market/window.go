package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientData is returned when a window does not hold enough
	// samples for the requested lookback.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrOutOfOrder is returned when an appended sample would move time
	// backwards.
	ErrOutOfOrder = errors.New("sample out of order")
)

// Sample is one (timestamp, price) observation.
type Sample struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceWindow is a fixed-capacity, append-only sequence of price samples.
// Once full, appending evicts the oldest sample. Timestamps are strictly
// non-decreasing.
type PriceWindow struct {
	capacity int
	samples  []Sample
}

func NewPriceWindow(capacity int) (*PriceWindow, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", capacity)
	}
	return &PriceWindow{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}, nil
}

// RestoreWindow rebuilds a window from a persisted tail. Samples must already
// be in timestamp order; anything beyond capacity keeps only the newest.
func RestoreWindow(capacity int, tail []Sample) (*PriceWindow, error) {
	w, err := NewPriceWindow(capacity)
	if err != nil {
		return nil, err
	}
	for _, s := range tail {
		if err := w.Append(s.Time, s.Price); err != nil {
			return nil, fmt.Errorf("restore window: %w", err)
		}
	}
	return w, nil
}

func (w *PriceWindow) Append(t time.Time, price float64) error {
	if n := len(w.samples); n > 0 && t.Before(w.samples[n-1].Time) {
		return fmt.Errorf("%w: %s before %s", ErrOutOfOrder, t, w.samples[n-1].Time)
	}
	w.samples = append(w.samples, Sample{Time: t, Price: price})
	if len(w.samples) > w.capacity {
		w.samples = w.samples[1:]
	}
	return nil
}

func (w *PriceWindow) Len() int      { return len(w.samples) }
func (w *PriceWindow) Capacity() int { return w.capacity }

// Last returns the newest sample, or false when the window is empty.
func (w *PriceWindow) Last() (Sample, bool) {
	if len(w.samples) == 0 {
		return Sample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Prices returns the prices oldest-first. The slice is a copy.
func (w *PriceWindow) Prices() []float64 {
	out := make([]float64, len(w.samples))
	for i, s := range w.samples {
		out[i] = s.Price
	}
	return out
}

// Tail returns up to n of the newest samples, oldest-first. Used for
// snapshot persistence.
func (w *PriceWindow) Tail(n int) []Sample {
	if n > len(w.samples) {
		n = len(w.samples)
	}
	out := make([]Sample, n)
	copy(out, w.samples[len(w.samples)-n:])
	return out
}
