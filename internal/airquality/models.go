package airquality

import (
	"strings"
	"time"
)

// City is a logical place for which we track air quality. Cities are
// addressed by name against the upstream provider (country is fixed to IN).
type City string

// Key returns a canonical string key for indexing this city in stores.
func (c City) Key() string {
	return strings.ToLower(strings.TrimSpace(string(c)))
}

// ProviderReading is a single provider's raw particulate readings for a
// city. Concentrations are µg/m³; a nil pointer means the provider did not
// report that pollutant ("no data"), which is distinct from zero.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time
	PM25         *float64
	PM10         *float64
}

// Snapshot is the computed air-quality view for a city at a point in time:
// raw concentrations, per-pollutant sub-indices and the overall AQI.
// Absent values stay nil end to end and serialize as JSON null.
type Snapshot struct {
	City      City      `json:"city"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	PM25      *float64  `json:"pm25"`
	PM10      *float64  `json:"pm10"`
	SubPM25   *int      `json:"subindexPm25"`
	SubPM10   *int      `json:"subindexPm10"`
	AQI       *int      `json:"aqi"`

	// Provider that contributed the readings, when known.
	Provider string `json:"provider,omitempty"`
}

// CityAQI is one row of the worst-city ranking.
type CityAQI struct {
	City City `json:"city"`
	AQI  int  `json:"aqi"`
}
