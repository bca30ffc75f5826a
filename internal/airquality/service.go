package airquality

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Faazil/aqiindia-backend/internal/aqi"
	"github.com/Faazil/aqiindia-backend/pkg/metrics"
)

// ErrNotFound is returned when no data is available for a given city.
var ErrNotFound = errors.New("no air quality data for city")

// Service orchestrates fetching from providers, the AQI calculation and the
// persistent store.
type Service struct {
	store     Store
	providers []Provider
	metrics   *metrics.Collector
}

// NewService creates a new Service. The metrics collector may be nil.
func NewService(store Store, providers []Provider, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		providers: providers,
		metrics:   collector,
	}
}

// FetchAndStore fetches readings from all providers concurrently for the
// given city, computes sub-indices and the overall AQI, and persists the
// snapshot. When no provider succeeds the last good snapshot is kept and no
// error is returned; an invalid upstream concentration is returned as a
// reportable error.
func (s *Service) FetchAndStore(ctx context.Context, city City) error {
	if len(s.providers) == 0 {
		return fmt.Errorf("no air quality providers configured")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			r, err := p.Fetch(ctx, city)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), city.Key(), err)
				s.metrics.RecordFetch(p.Name(), "error")
				return
			}
			s.metrics.RecordFetch(p.Name(), "ok")

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	if len(readings) == 0 {
		// No providers succeeded; do not overwrite the last good snapshot.
		log.Printf("no successful provider readings for %s; keeping last good snapshot if any", city.Key())
		return nil
	}

	snap, err := BuildSnapshot(city, readings)
	if err != nil {
		if errors.Is(err, aqi.ErrInvalidInput) {
			s.metrics.RecordInvalidInput()
		}
		return err
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", city.Key(), err)
	}
	s.metrics.RecordSnapshotStored()
	return nil
}

// GetCity returns the best-known snapshot for a city. Persisted data wins;
// when nothing is persisted yet a live fetch is attempted. Sub-indices and
// the overall AQI are always recomputed from the stored concentrations so
// served values stay consistent with the calculator.
func (s *Service) GetCity(ctx context.Context, city City) (Snapshot, error) {
	snap, err := s.store.GetLatest(ctx, city)
	if errors.Is(err, ErrNotFound) {
		if ferr := s.FetchAndStore(ctx, city); ferr != nil {
			return Snapshot{}, ferr
		}
		snap, err = s.store.GetLatest(ctx, city)
	}
	if err != nil {
		return Snapshot{}, err
	}

	if err := computeIndices(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(ctx context.Context, city City, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(ctx, city, from, to)
}

// TopCities returns the worst-AQI ranking. Cities without any computed AQI
// are excluded rather than ranked as zero.
func (s *Service) TopCities(ctx context.Context, limit int) ([]CityAQI, error) {
	return s.store.TopCities(ctx, limit)
}
