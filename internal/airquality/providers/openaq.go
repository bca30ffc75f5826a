package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
)

const defaultOpenAQBaseURL = "https://api.openaq.org/v2/latest"

// ErrNoResults reports that the upstream returned no stations for a city.
var ErrNoResults = errors.New("openaq: no results for city")

// OpenAQProvider implements the airquality.Provider interface for the
// OpenAQ latest-measurements API.
type OpenAQProvider struct {
	name    string
	apiKey  string
	baseURL string
	country string
	rc      *resilientClient
}

// NewOpenAQProvider creates an OpenAQ provider. baseURL may be empty to use
// the public API; the key is optional (OpenAQ rate-limits anonymous calls
// harder).
func NewOpenAQProvider(client *http.Client, baseURL, apiKey string) *OpenAQProvider {
	if baseURL == "" {
		baseURL = defaultOpenAQBaseURL
	}

	return &OpenAQProvider{
		name:    "openaq",
		apiKey:  apiKey,
		baseURL: baseURL,
		country: "IN",
		rc:      newResilientClient(client, "openaq"),
	}
}

func (p *OpenAQProvider) Name() string {
	return p.name
}

// Fetch retrieves the latest PM2.5/PM10 measurements for a city. Pollutants
// the upstream does not report come back as nil, never zero.
func (p *OpenAQProvider) Fetch(ctx context.Context, city airquality.City) (airquality.ProviderReading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("country", p.country)
		values.Set("city", string(city))
		values.Set("limit", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if p.apiKey != "" {
			req.Header.Set("X-API-Key", p.apiKey)
		}
		return req, nil
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return airquality.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			City         string `json:"city"`
			Measurements []struct {
				Parameter   string    `json:"parameter"`
				Value       *float64  `json:"value"`
				LastUpdated time.Time `json:"lastUpdated"`
			} `json:"measurements"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.ProviderReading{}, err
	}

	if len(payload.Results) == 0 {
		return airquality.ProviderReading{}, fmt.Errorf("%w: %s", ErrNoResults, city.Key())
	}

	reading := airquality.ProviderReading{
		ProviderName: p.name,
		Timestamp:    time.Now().UTC(),
	}

	var newest time.Time
	for _, m := range payload.Results[0].Measurements {
		switch m.Parameter {
		case "pm25":
			reading.PM25 = m.Value
		case "pm10":
			reading.PM10 = m.Value
		default:
			continue
		}
		if m.LastUpdated.After(newest) {
			newest = m.LastUpdated
		}
	}
	if !newest.IsZero() {
		reading.Timestamp = newest.UTC()
	}

	return reading, nil
}
