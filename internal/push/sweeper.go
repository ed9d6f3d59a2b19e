package push

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

// TokenSweeper periodically removes device tokens that have not been
// used for longer than maxAge.
type TokenSweeper struct {
	devices  repositories.DeviceTokenRepository
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewTokenSweeper constructs a TokenSweeper.
func NewTokenSweeper(devices repositories.DeviceTokenRepository, interval, maxAge time.Duration) *TokenSweeper {
	return &TokenSweeper{
		devices:  devices,
		interval: interval,
		maxAge:   maxAge,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop. Call with 'go'.
func (s *TokenSweeper) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("token sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			log.Info().Msg("token sweeper stopped")
			return
		}
	}
}

// Stop shuts the sweeper down.
func (s *TokenSweeper) Stop() {
	close(s.stopChan)
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	removed, err := s.devices.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("token sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("stale device tokens swept")
	}
}
