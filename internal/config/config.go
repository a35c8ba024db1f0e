package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Location is a monitored geographic point configured by the operator.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Fetch client settings.
	FetchTimeout    time.Duration
	FetchMaxRetries int
	FetchBaseDelay  time.Duration

	// Ingestion settings.
	Locations         []Location
	Workers           int
	ForecastDays      int
	ClimateModel      string
	SatelliteDaysBack int
	PanelTilt         int
	PanelAzimuth      int

	// Job intervals per domain.
	WeatherInterval    time.Duration
	AirQualityInterval time.Duration
	MarineInterval     time.Duration
	SatelliteInterval  time.Duration
	CleanupSpec        string

	// Retention windows.
	BatchRetention     time.Duration
	AggregateRetention time.Duration
	SnapshotRetention  time.Duration

	// Optional Kafka run-summary publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment (and an optional .env file),
// applying defaults where unset.
func Load() (*Config, error) {
	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	fetchBaseDelay, err := parseDuration("FETCH_BASE_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	weatherInterval, err := parseDuration("WEATHER_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	airQualityInterval, err := parseDuration("AIR_QUALITY_INTERVAL", "12h")
	if err != nil {
		return nil, err
	}
	marineInterval, err := parseDuration("MARINE_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	satelliteInterval, err := parseDuration("SATELLITE_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	batchRetention, err := parseDuration("BATCH_RETENTION", "168h")
	if err != nil {
		return nil, err
	}
	aggregateRetention, err := parseDuration("AGGREGATE_RETENTION", "2160h")
	if err != nil {
		return nil, err
	}
	snapshotRetention, err := parseDuration("SNAPSHOT_RETENTION", "720h")
	if err != nil {
		return nil, err
	}

	locations, err := ParseLocations(os.Getenv("WATCH_LOCATIONS"))
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FetchTimeout:    fetchTimeout,
		FetchMaxRetries: envInt("FETCH_MAX_RETRIES", 5),
		FetchBaseDelay:  fetchBaseDelay,

		Locations:         locations,
		Workers:           envInt("INGEST_WORKERS", 4),
		ForecastDays:      envInt("FORECAST_DAYS", 7),
		ClimateModel:      envOrDefault("CLIMATE_MODEL", "EC_Earth3P_HR"),
		SatelliteDaysBack: envInt("SATELLITE_DAYS_BACK", 1),
		PanelTilt:         envInt("PANEL_TILT", 35),
		PanelAzimuth:      envInt("PANEL_AZIMUTH", 0),

		WeatherInterval:    weatherInterval,
		AirQualityInterval: airQualityInterval,
		MarineInterval:     marineInterval,
		SatelliteInterval:  satelliteInterval,
		CleanupSpec:        envOrDefault("CLEANUP_SPEC", "0 2 * * *"),

		BatchRetention:     batchRetention,
		AggregateRetention: aggregateRetention,
		SnapshotRetention:  snapshotRetention,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "ingest-run-summaries"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.FetchMaxRetries < 1 {
		return nil, errors.New("FETCH_MAX_RETRIES must be at least 1")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("INGEST_WORKERS must be at least 1")
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 16 {
		return nil, errors.New("FORECAST_DAYS must be between 1 and 16")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// ParseLocations parses the WATCH_LOCATIONS format: "name,lat,lon[,timezone]"
// entries separated by semicolons, e.g.
// "Madrid,40.4168,-3.7038,Europe/Madrid;Bogota,4.7110,-74.0721,America/Bogota".
// A missing timezone field defaults to "auto".
func ParseLocations(raw string) ([]Location, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var locations []Location
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("invalid WATCH_LOCATIONS entry %q: want name,lat,lon[,timezone]", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in WATCH_LOCATIONS entry %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in WATCH_LOCATIONS entry %q: %w", entry, err)
		}
		if lat < -90 || lat > 90 {
			return nil, fmt.Errorf("latitude out of range in WATCH_LOCATIONS entry %q", entry)
		}
		if lon < -180 || lon > 180 {
			return nil, fmt.Errorf("longitude out of range in WATCH_LOCATIONS entry %q", entry)
		}
		tz := "auto"
		if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
			tz = strings.TrimSpace(fields[3])
		}
		locations = append(locations, Location{
			Name:      strings.TrimSpace(fields[0]),
			Latitude:  lat,
			Longitude: lon,
			Timezone:  tz,
		})
	}
	return locations, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
