package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
)

// Scheduler periodically polls air quality data for the configured cities
// and prunes old measurements.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *airquality.Service
	store     airquality.Store
	cities    []airquality.City
	interval  time.Duration
	maxAge    time.Duration
}

// New creates a new Scheduler.
func New(cities []airquality.City, interval, maxAge time.Duration, service *airquality.Service, store airquality.Store) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		store:     store,
		cities:    cities,
		interval:  interval,
		maxAge:    maxAge,
	}
}

// Start schedules the ingest and prune jobs and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.runIngest); err != nil {
		return err
	}

	if s.maxAge > 0 {
		if _, err := s.scheduler.Every(1).Day().At("03:00").Do(s.runPrune); err != nil {
			return err
		}
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

func (s *Scheduler) runIngest() {
	jobID := uuid.NewString()
	log.Printf("scheduler: run %s: fetching air quality for %d cities", jobID, len(s.cities))

	var wg sync.WaitGroup
	for _, city := range s.cities {
		wg.Add(1)
		go func(city airquality.City) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, city); err != nil {
				log.Printf("scheduler: run %s: fetch failed for %s: %v", jobID, city.Key(), err)
			}
		}(city)
	}
	wg.Wait()
	log.Printf("scheduler: run %s: completed", jobID)
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.store.Prune(ctx, s.maxAge)
	if err != nil {
		log.Printf("scheduler: prune failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("scheduler: pruned %d measurements older than %s", removed, s.maxAge)
	}
}
