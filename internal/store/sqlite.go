// Package store persists computed air quality snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
	"github.com/Faazil/aqiindia-backend/pkg/metrics"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS measurements(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		city TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		aqi INTEGER,
		pm25 REAL,
		pm10 REAL,
		sub_pm25 INTEGER,
		sub_pm10 INTEGER,
		provider TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_city_ts ON measurements(city, timestamp)`,
}

// SQLiteStore is a SQLite-backed implementation of airquality.Store.
// Timestamps are stored as RFC3339 UTC text so lexical and chronological
// order agree; absent values are stored as NULL, never 0.
type SQLiteStore struct {
	db      *sqlx.DB
	metrics *metrics.Collector
}

// Open opens (and if needed creates) the SQLite database at path and
// ensures the schema exists. Use ":memory:" for tests.
func Open(path string, collector *metrics.Collector) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// The pure-Go driver serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent scheduler and API access.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, metrics: collector}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type measurementRow struct {
	ID        int64    `db:"id"`
	City      string   `db:"city"`
	Timestamp string   `db:"timestamp"`
	AQI       *int     `db:"aqi"`
	PM25      *float64 `db:"pm25"`
	PM10      *float64 `db:"pm10"`
	SubPM25   *int     `db:"sub_pm25"`
	SubPM10   *int     `db:"sub_pm10"`
	Provider  string   `db:"provider"`
}

func (r measurementRow) toSnapshot() airquality.Snapshot {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	return airquality.Snapshot{
		City:      airquality.City(r.City),
		Timestamp: ts.UTC(),
		PM25:      r.PM25,
		PM10:      r.PM10,
		SubPM25:   r.SubPM25,
		SubPM10:   r.SubPM10,
		AQI:       r.AQI,
		Provider:  r.Provider,
	}
}

// SaveSnapshot appends a new snapshot for a city.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap airquality.Snapshot) error {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("insert_measurement", time.Since(start).Seconds()) }()

	ts := snap.Timestamp.UTC()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO measurements(city, timestamp, aqi, pm25, pm10, sub_pm25, sub_pm10, provider)
		 VALUES (?,?,?,?,?,?,?,?)`,
		string(snap.City), ts.Format(time.RFC3339),
		snap.AQI, snap.PM25, snap.PM10, snap.SubPM25, snap.SubPM10, snap.Provider,
	)
	if err != nil {
		s.metrics.RecordDBError("insert_error")
		return fmt.Errorf("insert measurement: %w", err)
	}
	return nil
}

// GetLatest returns the most recent snapshot for a city. City matching is
// case-insensitive.
func (s *SQLiteStore) GetLatest(ctx context.Context, city airquality.City) (airquality.Snapshot, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("get_latest", time.Since(start).Seconds()) }()

	var row measurementRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, city, timestamp, aqi, pm25, pm10, sub_pm25, sub_pm10, provider
		 FROM measurements
		 WHERE lower(trim(city)) = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT 1`,
		city.Key(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.Snapshot{}, airquality.ErrNotFound
	}
	if err != nil {
		s.metrics.RecordDBError("get_latest_error")
		return airquality.Snapshot{}, fmt.Errorf("get latest measurement: %w", err)
	}
	return row.toSnapshot(), nil
}

// GetRange returns all snapshots for a city between from and to (inclusive),
// oldest first.
func (s *SQLiteStore) GetRange(ctx context.Context, city airquality.City, from, to time.Time) ([]airquality.Snapshot, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("get_range", time.Since(start).Seconds()) }()

	var rows []measurementRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, city, timestamp, aqi, pm25, pm10, sub_pm25, sub_pm10, provider
		 FROM measurements
		 WHERE lower(trim(city)) = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, id ASC`,
		city.Key(), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.metrics.RecordDBError("get_range_error")
		return nil, fmt.Errorf("get measurement range: %w", err)
	}
	if len(rows) == 0 {
		return nil, airquality.ErrNotFound
	}

	snaps := make([]airquality.Snapshot, 0, len(rows))
	for _, r := range rows {
		snaps = append(snaps, r.toSnapshot())
	}
	return snaps, nil
}

// TopCities ranks cities by their worst recorded AQI, descending. Rows with
// no computed AQI are excluded; "no data" must never rank as zero.
func (s *SQLiteStore) TopCities(ctx context.Context, limit int) ([]airquality.CityAQI, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("top_cities", time.Since(start).Seconds()) }()

	type rankRow struct {
		City string `db:"city"`
		AQI  int    `db:"aqi"`
	}
	var rows []rankRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT city, MAX(aqi) AS aqi
		 FROM measurements
		 WHERE aqi IS NOT NULL
		 GROUP BY lower(trim(city))
		 ORDER BY aqi DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		s.metrics.RecordDBError("top_cities_error")
		return nil, fmt.Errorf("rank cities: %w", err)
	}

	ranking := make([]airquality.CityAQI, 0, len(rows))
	for _, r := range rows {
		ranking = append(ranking, airquality.CityAQI{City: airquality.City(r.City), AQI: r.AQI})
	}
	return ranking, nil
}

// Prune deletes measurements older than maxAge and reports how many rows
// were removed. A maxAge of zero disables pruning.
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("prune", time.Since(start).Seconds()) }()

	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM measurements WHERE timestamp < ?`, cutoff)
	if err != nil {
		s.metrics.RecordDBError("prune_error")
		return 0, fmt.Errorf("prune measurements: %w", err)
	}
	return res.RowsAffected()
}
