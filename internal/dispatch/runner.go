package dispatch

import (
	"context"
	"time"

	"becca-platform/pkg/logger"
)

// Runner drives the dispatcher on a fixed interval until its context is
// canceled. It replaces the external cron trigger of a serverless deployment.
type Runner struct {
	Dispatcher *Dispatcher
	Interval   time.Duration
}

func (r Runner) Run(ctx context.Context) {
	log := logger.From(ctx)
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("dispatcher runner started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.Info("dispatcher runner stopped")
			return
		case <-ticker.C:
			if _, err := r.Dispatcher.RunPass(ctx); err != nil {
				log.Error("dispatch pass failed", "err", err)
			}
		}
	}
}
