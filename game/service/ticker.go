package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Ticker drives the game clock in automatic mode. Each fire advances the
// game by the wall time actually elapsed since the previous fire, not by the
// nominal period, so slow ticks do not lose game time.
type Ticker struct {
	period  time.Duration
	service GameService
	log     zerolog.Logger
}

// NewTicker creates a ticker that calls service.Tick every period.
func NewTicker(period time.Duration, service GameService, log zerolog.Logger) *Ticker {
	return &Ticker{period: period, service: service, log: log}
}

// Run ticks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if err := t.service.Tick(ctx, float64(delta)/float64(time.Millisecond)); err != nil {
				t.log.Error().Err(err).Msg("tick failed")
			}
		}
	}
}
