package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gerrymanoim/exchange-calendars/internal/registry"
)

// WarmupJob prebuilds every registered calendar over a rolling window
// so queries never pay build latency. Run daily, it also rolls the
// window forward as time passes.
type WarmupJob struct {
	registry  *registry.Registry
	yearsBack int
	yearsFwd  int
	log       zerolog.Logger
}

// NewWarmupJob creates the warm-up job. yearsBack/yearsFwd bound the
// prebuilt window around the current year.
func NewWarmupJob(reg *registry.Registry, yearsBack, yearsFwd int, log zerolog.Logger) *WarmupJob {
	return &WarmupJob{
		registry:  reg,
		yearsBack: yearsBack,
		yearsFwd:  yearsFwd,
		log:       log.With().Str("component", "warmup").Logger(),
	}
}

// Name implements Job.
func (j *WarmupJob) Name() string { return "calendar_warmup" }

// Run builds (or refreshes) every registered calendar. A calendar that
// fails to build is logged and skipped; the remaining calendars still
// warm up.
func (j *WarmupJob) Run() error {
	year := time.Now().UTC().Year()
	start := time.Date(year-j.yearsBack, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+j.yearsFwd, time.December, 31, 0, 0, 0, 0, time.UTC)

	var firstErr error
	for _, name := range j.registry.Names() {
		ix, err := j.registry.Get(name, start, end)
		if err != nil {
			j.log.Error().Err(err).Str("calendar", name).Msg("Warm-up build failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		j.log.Debug().Str("calendar", name).Int("sessions", ix.Len()).Msg("Calendar warm")
	}
	return firstErr
}
