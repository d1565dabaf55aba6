package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wellness-companion/internal/usecase"
)

// Evictor periodically drops chat session engines that have sat idle past
// their TTL, so abandoned browser tabs do not pin memory.
type Evictor struct {
	interval time.Duration
	maxIdle  time.Duration
	sessions usecase.ChatSessionUseCase
	log      *zerolog.Logger
}

func NewEvictor(interval, maxIdle time.Duration, sessions usecase.ChatSessionUseCase, logger *zerolog.Logger) *Evictor {
	evLog := logger.With().Str("component", "Evictor").Logger()
	return &Evictor{
		interval: interval,
		maxIdle:  maxIdle,
		sessions: sessions,
		log:      &evLog,
	}
}

func (w *Evictor) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting session evictor")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session evictor")
			return ctx.Err()
		case <-ticker.C:
			if n := w.sessions.EvictIdle(w.maxIdle); n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions evicted")
			}
		}
	}
}
