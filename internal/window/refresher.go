package window

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"whatsapp-engine/pkg/logger"
)

// DefaultSchedule re-reads stored inbound instants once a minute
const DefaultSchedule = "@every 1m"

// Entry is one stored lastInboundAt value
type Entry struct {
	Key           Key
	LastInboundAt time.Time
}

// Source reads lastInboundAt values from storage
type Source interface {
	LastInbound(ctx context.Context) ([]Entry, error)
}

// Refresher periodically folds stored instants into a Tracker using the
// same monotonic max as the live path.
type Refresher struct {
	tracker  *Tracker
	source   Source
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func NewRefresher(tracker *Tracker, source Source, schedule string) *Refresher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Refresher{
		tracker:  tracker,
		source:   source,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(),
	}
}

// Refresh runs one pass and returns how many windows moved forward
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	entries, err := r.source.LastInbound(ctx)
	if err != nil {
		return 0, fmt.Errorf("window: load last inbound: %w", err)
	}
	advanced := 0
	for _, e := range entries {
		if r.tracker.Observe(e.Key, e.LastInboundAt) {
			advanced++
		}
	}
	return advanced, nil
}

// Start seeds the tracker and schedules further passes
func (r *Refresher) Start(ctx context.Context) error {
	n, err := r.Refresh(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("windows", n).Msg("Conversation windows seeded from storage")

	_, err = r.cron.AddFunc(r.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		n, err := r.Refresh(runCtx)
		if err != nil {
			logger.Error().Err(err).Msg("Window refresh failed")
			return
		}
		if n > 0 {
			logger.Debug().Int("advanced", n).Msg("Window refresh applied newer inbound timestamps")
		}
	})
	if err != nil {
		return fmt.Errorf("window: invalid refresh schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	return nil
}

// Stop waits for a running pass to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
