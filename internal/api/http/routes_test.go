package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
	"github.com/Faazil/aqiindia-backend/internal/store"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func newTestApp(t *testing.T) (*fiber.App, *store.SQLiteStore) {
	t.Helper()

	st, err := store.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	app := fiber.New()
	svc := airquality.NewService(st, nil, nil)
	RegisterRoutes(app, svc, nil, 10)
	return app, st
}

func TestTopCitiesEndpoint(t *testing.T) {
	app, st := newTestApp(t)
	now := time.Now().UTC()

	seed := []airquality.Snapshot{
		{City: "Delhi", Timestamp: now, PM25: fptr(180), AQI: iptr(330)},
		{City: "Mumbai", Timestamp: now, PM25: fptr(45), AQI: iptr(76)},
	}
	for _, snap := range seed {
		if err := st.SaveSnapshot(context.Background(), snap); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/top-cities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Limit  int                  `json:"limit"`
		Cities []airquality.CityAQI `json:"cities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Limit != 10 {
		t.Errorf("limit = %d, want default 10", body.Limit)
	}
	if len(body.Cities) != 2 || body.Cities[0].City != "Delhi" {
		t.Errorf("cities = %+v, want Delhi ranked first", body.Cities)
	}
}

func TestTopCitiesLimitValidation(t *testing.T) {
	app, _ := newTestApp(t)

	for _, q := range []string{"limit=0", "limit=-3", "limit=500"} {
		req := httptest.NewRequest(http.MethodGet, "/api/top-cities?"+q, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", q, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestCityEndpoint(t *testing.T) {
	app, st := newTestApp(t)

	snap := airquality.Snapshot{
		City:      "Delhi",
		Timestamp: time.Now().UTC(),
		PM25:      fptr(45),
		PM10:      fptr(40),
	}
	if err := st.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/city/Delhi", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		City    string   `json:"city"`
		PM25    *float64 `json:"pm25"`
		SubPM25 *int     `json:"subindexPm25"`
		SubPM10 *int     `json:"subindexPm10"`
		AQI     *int     `json:"aqi"`
		Message string   `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.City != "Delhi" {
		t.Errorf("city = %q, want Delhi", body.City)
	}
	// Indices are computed on read even though none were stored.
	if body.SubPM25 == nil || *body.SubPM25 != 76 {
		t.Errorf("subindexPm25 = %v, want 76", body.SubPM25)
	}
	if body.SubPM10 == nil || *body.SubPM10 != 40 {
		t.Errorf("subindexPm10 = %v, want 40", body.SubPM10)
	}
	if body.AQI == nil || *body.AQI != 76 {
		t.Errorf("aqi = %v, want 76", body.AQI)
	}
	if body.Message != "" {
		t.Errorf("unexpected message %q for city with data", body.Message)
	}
}

// A city with a persisted row but no measurements serves null values plus an
// explicit no-data message, never a zero AQI.
func TestCityEndpointNoData(t *testing.T) {
	app, st := newTestApp(t)

	snap := airquality.Snapshot{City: "Shillong", Timestamp: time.Now().UTC()}
	if err := st.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/city/Shillong", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["aqi"] != nil {
		t.Errorf("aqi = %v, want null", body["aqi"])
	}
	if body["message"] != "no data available" {
		t.Errorf("message = %v, want %q", body["message"], "no data available")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	app, st := newTestApp(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := airquality.Snapshot{
			City:      "Delhi",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			AQI:       iptr(100 + i),
		}
		if err := st.SaveSnapshot(context.Background(), snap); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	// Missing from/to must return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/city/Delhi/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Valid range returns the matching snapshots.
	url := "/api/city/Delhi/history?from=2024-01-01T00:00:00Z&to=2024-01-01T01:00:00Z"
	req = httptest.NewRequest(http.MethodGet, url, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Snapshots []airquality.Snapshot `json:"snapshots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Snapshots) != 2 {
		t.Errorf("got %d snapshots, want 2", len(body.Snapshots))
	}

	// Range with no data returns 404.
	url = "/api/city/Delhi/history?from=2030-01-01T00:00:00Z&to=2030-01-02T00:00:00Z"
	req = httptest.NewRequest(http.MethodGet, url, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
