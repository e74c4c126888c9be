package uploads

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// Janitor periodically sweeps stale files out of the upload store. The
// ingestion pipeline removes its own files; the janitor only catches
// leftovers from requests that died before cleanup.
type Janitor struct {
	store    interfaces.UploadStore
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewJanitor creates a janitor with the given cron schedule and retention age.
func NewJanitor(store interfaces.UploadStore, schedule string, maxAge time.Duration, logger arbor.ILogger) *Janitor {
	return &Janitor{
		store:    store,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the scheduler. An empty schedule
// disables the janitor.
func (j *Janitor) Start() error {
	if j.schedule == "" {
		j.logger.Debug().Msg("Upload janitor disabled (no schedule configured)")
		return nil
	}

	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.store.Sweep(j.maxAge); err != nil {
			j.logger.Warn().Err(err).Msg("Upload sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info().
		Str("schedule", j.schedule).
		Dur("max_age", j.maxAge).
		Msg("Upload janitor started")

	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron != nil {
		ctx := j.cron.Stop()
		<-ctx.Done()
	}
}
