package airquality

import (
	"context"
	"time"
)

// Provider abstracts an upstream air-quality data source (e.g. OpenAQ).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city City) (ProviderReading, error)
}

// Store is the contract the SQLite store (and any future persistent store)
// must satisfy.
type Store interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	GetLatest(ctx context.Context, city City) (Snapshot, error)
	GetRange(ctx context.Context, city City, from, to time.Time) ([]Snapshot, error)
	TopCities(ctx context.Context, limit int) ([]CityAQI, error)
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
}
