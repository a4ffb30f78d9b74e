// Package scheduler runs the periodic background refresh of every
// tracked city and the forecast retention sweep.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"cirrus/internal/city"
)

type Scheduler struct {
	scheduler       *gocron.Scheduler
	cityService     *city.CityService
	refreshInterval time.Duration
	forecastMaxAge  time.Duration
}

func New(cityService *city.CityService, refreshInterval, forecastMaxAge time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		cityService:     cityService,
		refreshInterval: refreshInterval,
		forecastMaxAge:  forecastMaxAge,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.refreshInterval).Do(s.runSweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("scheduler: running weather refresh sweep")
	outcomes, err := s.cityService.RefreshAll(ctx)
	if err != nil {
		log.Printf("scheduler: refresh sweep failed: %v", err)
		return
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Error != "" {
			failed++
		}
	}
	log.Printf("scheduler: refreshed %d cities (%d failed)", len(outcomes), failed)

	cutoff := time.Now().Add(-s.forecastMaxAge)
	if err := s.cityService.PruneForecasts(ctx, cutoff); err != nil {
		log.Printf("scheduler: forecast prune failed: %v", err)
	}
}
