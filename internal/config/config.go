package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Faazil/aqiindia-backend/internal/airquality"
)

// AppConfig holds all runtime configuration, read from the environment.
type AppConfig struct {
	// Cities to poll.
	Cities []airquality.City

	// IngestInterval controls how often we poll the upstream provider.
	IngestInterval time.Duration

	// StoreMaxAge is the retention window for persisted measurements
	// (0 = keep forever).
	StoreMaxAge time.Duration

	// DBPath is the SQLite database file.
	DBPath string

	// OpenAQBaseURL overrides the upstream endpoint (used in tests);
	// OpenAQAPIKey is optional.
	OpenAQBaseURL string
	OpenAQAPIKey  string

	// HTTPTimeout applies to outbound provider calls.
	HTTPTimeout time.Duration

	// CORSAllowOrigins is the comma-separated list of allowed frontend
	// origins.
	CORSAllowOrigins string

	// TopCitiesLimit is the default ranking size when the request does
	// not specify one.
	TopCitiesLimit int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenAQBaseURL = os.Getenv("OPENAQ_BASE_URL")
	cfg.OpenAQAPIKey = os.Getenv("OPENAQ_API_KEY")

	interval, err := time.ParseDuration(getenvDefault("INGEST_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_INTERVAL: %w", err)
	}
	cfg.IngestInterval = interval

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DBPath = getenvDefault("DB_PATH", "aqi.db")
	cfg.TopCitiesLimit = getenvInt("TOP_CITIES_LIMIT", 10)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS",
		"https://aqiindia.live,https://www.aqiindia.live")

	cfg.Cities = loadCities()
	if len(cfg.Cities) == 0 {
		return nil, fmt.Errorf("CITIES must name at least one city")
	}

	return cfg, nil
}

func loadCities() []airquality.City {
	raw := getenvDefault("CITIES", "Delhi,Mumbai,Kolkata,Bengaluru,Hyderabad")

	var cities []airquality.City
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cities = append(cities, airquality.City(name))
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
