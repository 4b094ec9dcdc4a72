package jobs

import (
	"context"
	"time"

	"knowledge-assistant-be/internal/pkg/logger"
)

// SyncFunc performs one resync pass. It returns the number of records
// it touched so the scheduler can log progress.
type SyncFunc func(ctx context.Context) (int, error)

// ResyncScheduler periodically re-runs a sync function. After a
// successful pass it sleeps the long delay; after a failure it retries
// on the short delay.
type ResyncScheduler struct {
	name         string
	sync         SyncFunc
	successDelay time.Duration
	failureDelay time.Duration
	log          logger.ILogger
}

func NewResyncScheduler(name string, sync SyncFunc, successDelay, failureDelay time.Duration, log logger.ILogger) *ResyncScheduler {
	return &ResyncScheduler{
		name:         name,
		sync:         sync,
		successDelay: successDelay,
		failureDelay: failureDelay,
		log:          log,
	}
}

// Run blocks until the context is cancelled. The first pass starts
// immediately.
func (s *ResyncScheduler) Run(ctx context.Context) {
	delay := time.Duration(0)
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		touched, err := s.sync(ctx)
		if err != nil {
			s.log.Warn("resync", "sync pass failed", map[string]interface{}{
				"scheduler": s.name,
				"error":     err.Error(),
			})
			delay = s.failureDelay
			continue
		}

		if touched > 0 {
			s.log.Info("resync", "sync pass completed", map[string]interface{}{
				"scheduler": s.name,
				"touched":   touched,
			})
		}
		delay = s.successDelay
	}
}
