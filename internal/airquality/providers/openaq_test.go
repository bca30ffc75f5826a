package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const latestFixture = `{
	"results": [{
		"city": "Delhi",
		"measurements": [
			{"parameter": "pm25", "value": 45.0, "lastUpdated": "2024-01-01T10:00:00Z"},
			{"parameter": "pm10", "value": 134.0, "lastUpdated": "2024-01-01T11:00:00Z"},
			{"parameter": "no2", "value": 12.0, "lastUpdated": "2024-01-01T11:00:00Z"}
		]
	}]
}`

func TestOpenAQFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"country": r.URL.Query().Get("country"),
			"city":    r.URL.Query().Get("city"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(latestFixture))
	}))
	defer srv.Close()

	p := NewOpenAQProvider(srv.Client(), srv.URL, "")
	reading, err := p.Fetch(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotQuery["country"] != "IN" || gotQuery["city"] != "Delhi" {
		t.Errorf("query = %v, want country=IN city=Delhi", gotQuery)
	}
	if reading.PM25 == nil || *reading.PM25 != 45 {
		t.Errorf("PM25 = %v, want 45", reading.PM25)
	}
	if reading.PM10 == nil || *reading.PM10 != 134 {
		t.Errorf("PM10 = %v, want 134", reading.PM10)
	}
	// Timestamp is the newest measurement's lastUpdated.
	if got := reading.Timestamp.Format("2006-01-02T15:04:05Z"); got != "2024-01-01T11:00:00Z" {
		t.Errorf("Timestamp = %s, want 2024-01-01T11:00:00Z", got)
	}
}

// A station that only reports one pollutant must leave the other nil.
func TestOpenAQFetchPartialData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"city":"Shillong","measurements":[
			{"parameter":"pm10","value":40.0,"lastUpdated":"2024-01-01T10:00:00Z"}
		]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAQProvider(srv.Client(), srv.URL, "")
	reading, err := p.Fetch(context.Background(), "Shillong")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if reading.PM25 != nil {
		t.Errorf("PM25 = %v, want nil", reading.PM25)
	}
	if reading.PM10 == nil || *reading.PM10 != 40 {
		t.Errorf("PM10 = %v, want 40", reading.PM10)
	}
}

func TestOpenAQFetchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAQProvider(srv.Client(), srv.URL, "")
	if _, err := p.Fetch(context.Background(), "Atlantis"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("Fetch error = %v, want ErrNoResults", err)
	}
}

func TestOpenAQFetchSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(latestFixture))
	}))
	defer srv.Close()

	p := NewOpenAQProvider(srv.Client(), srv.URL, "secret")
	if _, err := p.Fetch(context.Background(), "Delhi"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want %q", gotKey, "secret")
	}
}
