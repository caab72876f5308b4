package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/turkerssh/next-weather-app/internal/refresh"
)

// AutoRefresh periodically re-runs a fetch cycle for the currently selected
// location, driving the same path as a manual refresh. The countdown shown
// in the UI is derived from the controller's lastUpdatedAt and this
// interval; the timer itself lives here.
type AutoRefresh struct {
	scheduler  *gocron.Scheduler
	controller *refresh.Controller
	interval   time.Duration
	log        zerolog.Logger
}

// New creates an AutoRefresh firing every interval.
func New(controller *refresh.Controller, interval time.Duration, log zerolog.Logger) *AutoRefresh {
	s := gocron.NewScheduler(time.UTC)
	return &AutoRefresh{
		scheduler:  s,
		controller: controller,
		interval:   interval,
		log:        log.With().Str("component", "autorefresh").Logger(),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (a *AutoRefresh) Start() error {
	seconds := int(a.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := a.scheduler.Every(seconds).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// No-op until a location is first selected.
		a.log.Debug().Msg("auto-refresh tick")
		a.controller.ManualRefresh(ctx)
	})
	if err != nil {
		return err
	}

	a.scheduler.StartAsync()
	return nil
}

// Stop cancels the periodic job. No tick fires after Stop returns.
func (a *AutoRefresh) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}
