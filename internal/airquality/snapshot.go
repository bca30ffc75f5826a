package airquality

import (
	"fmt"
	"sort"
	"time"

	"github.com/Faazil/aqiindia-backend/internal/aqi"
)

// BuildSnapshot combines provider readings into a single Snapshot and runs
// the AQI calculation. Readings are consulted newest-first and the first
// reported value wins per pollutant; pollutants nobody reported stay nil.
//
// An invalid concentration (negative, NaN) is a reportable error, not a
// silent "no data": callers must be able to tell bad upstream data apart
// from a city that simply has no measurements.
func BuildSnapshot(city City, readings []ProviderReading) (Snapshot, error) {
	snap := Snapshot{City: city, Timestamp: time.Now().UTC()}

	sorted := make([]ProviderReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	for _, r := range sorted {
		if snap.PM25 == nil && r.PM25 != nil {
			snap.PM25 = r.PM25
		}
		if snap.PM10 == nil && r.PM10 != nil {
			snap.PM10 = r.PM10
		}
		if snap.Provider == "" {
			snap.Provider = r.ProviderName
		}
	}

	if len(sorted) > 0 && !sorted[0].Timestamp.IsZero() {
		snap.Timestamp = sorted[0].Timestamp.UTC()
	}

	if err := computeIndices(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// computeIndices derives sub-indices and the overall AQI from the
// snapshot's concentrations. Absent concentrations yield absent indices.
func computeIndices(snap *Snapshot) error {
	var err error
	snap.SubPM25, err = aqi.SubIndex(snap.PM25, aqi.PM25Breakpoints)
	if err != nil {
		return fmt.Errorf("pm25 for %s: %w", snap.City, err)
	}
	snap.SubPM10, err = aqi.SubIndex(snap.PM10, aqi.PM10Breakpoints)
	if err != nil {
		return fmt.Errorf("pm10 for %s: %w", snap.City, err)
	}
	snap.AQI = aqi.Overall(snap.SubPM25, snap.SubPM10)
	return nil
}
