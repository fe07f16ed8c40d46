// Package market simulates the coin/ETB exchange rate with a small random
// walk, the way a live ticker feels without a real price feed.
package market

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// maxDriftFraction bounds one step to a quarter percent either way.
const maxDriftFraction = 0.0025

// Rates provides the current rate and accepts updates. The ledger engine
// satisfies this.
type Rates interface {
	ExchangeRate() float64
	SetExchangeRate(rate float64)
}

// Drifter nudges the exchange rate on a fixed interval.
type Drifter struct {
	rates    Rates
	interval time.Duration
	onChange func(rate float64)
	rnd      *rand.Rand
}

// New creates a drifter. onChange may be nil; when set it fires after every
// applied step with the new rate.
func New(rates Rates, interval time.Duration, onChange func(rate float64)) *Drifter {
	return &Drifter{
		rates:    rates,
		interval: interval,
		onChange: onChange,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks until the context is cancelled.
func (d *Drifter) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rate := step(d.rates.ExchangeRate(), d.rnd.Float64())
			d.rates.SetExchangeRate(rate)
			if d.onChange != nil {
				d.onChange(rate)
			}
		}
	}
}

// step applies one drift move. roll is uniform in [0,1); the resulting
// factor stays within maxDriftFraction of 1. Rates round to two decimals
// and never fall below 1.
func step(rate, roll float64) float64 {
	factor := 1 + (roll*2-1)*maxDriftFraction
	next := math.Round(rate*factor*100) / 100
	if next < 1 {
		return 1
	}
	return next
}
