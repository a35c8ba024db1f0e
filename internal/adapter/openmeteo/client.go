// Package openmeteo is the HTTP adapter for the Open-Meteo endpoint families
// (forecast, air quality, marine, satellite archive, climate archive). The
// client retries with exponential backoff behind a per-endpoint circuit
// breaker; each call carries its own target URL, so there is no shared
// mutable endpoint state between concurrent requests.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/vientodata/enviro-etl-service/internal/observability"
)

// Endpoint families. Used as metric labels and breaker names.
const (
	EndpointForecast   = "forecast"
	EndpointAirQuality = "air_quality"
	EndpointMarine     = "marine"
	EndpointSatellite  = "satellite"
	EndpointClimate    = "climate"
)

// Per-domain forecast horizon maxima documented by the upstream.
const (
	maxForecastDays   = 16
	maxAirQualityDays = 5
	maxMarineDays     = 7
)

// Requested quantity lists per endpoint section. These are the exact strings
// sent to the API; the parameter catalog maps them to stored codes.
const (
	weatherCurrentParams = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,cloud_cover,wind_speed_10m,wind_direction_10m"
	weatherHourlyParams  = "temperature_2m,relative_humidity_2m,precipitation_probability,precipitation,weather_code,wind_speed_10m,wind_direction_10m"
	weatherDailyParams   = "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_hours,precipitation_probability_max,weather_code,sunrise,sunset,sunshine_duration,uv_index_max,wind_speed_10m_max,wind_gusts_10m_max,wind_direction_10m_dominant"

	airQualityCurrentParams = "pm2_5,pm10,european_aqi,us_aqi,nitrogen_dioxide,ozone,sulphur_dioxide,carbon_monoxide,dust,ammonia"
	airQualityHourlyParams  = "pm2_5,pm10,european_aqi,us_aqi,nitrogen_dioxide,ozone,sulphur_dioxide,carbon_monoxide"

	marineCurrentParams = "wave_height,wave_direction,wave_period,swell_wave_height,swell_wave_direction,swell_wave_period,wind_wave_height,sea_surface_temperature,ocean_current_velocity,ocean_current_direction"
	marineHourlyParams  = "wave_height,wave_direction,wave_period,swell_wave_height,swell_wave_direction,swell_wave_period,wind_wave_height,sea_surface_temperature"
	marineDailyParams   = "wave_height_max,wave_direction_dominant,wave_period_max,swell_wave_height_max,swell_wave_direction_dominant,sea_surface_temperature_mean,ocean_current_velocity_max"

	satelliteHourlyParams = "shortwave_radiation,direct_radiation,diffuse_radiation,direct_normal_irradiance,global_tilted_irradiance,terrestrial_radiation"

	climateDailyParams = "temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_sum,rain_sum,snowfall_sum,relative_humidity_2m_max,relative_humidity_2m_min,relative_humidity_2m_mean,wind_speed_10m_mean,wind_speed_10m_max,pressure_msl_mean,cloud_cover_mean,shortwave_radiation_sum,soil_moisture_0_to_10cm_mean"
)

// ErrCircuitOpen wraps failures short-circuited by an open breaker.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Endpoints holds the base URLs of the five endpoint families.
type Endpoints struct {
	Forecast   string
	AirQuality string
	Marine     string
	Satellite  string
	Climate    string
}

// DefaultEndpoints returns the production Open-Meteo base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Forecast:   "https://api.open-meteo.com/v1/forecast",
		AirQuality: "https://air-quality-api.open-meteo.com/v1/air-quality",
		Marine:     "https://marine-api.open-meteo.com/v1/marine",
		Satellite:  "https://satellite-api.open-meteo.com/v1/archive",
		Climate:    "https://climate-api.open-meteo.com/v1/climate",
	}
}

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	Endpoints  Endpoints
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Clock      clockwork.Clock
}

// Client issues retrying requests against the Open-Meteo endpoint families.
// It owns one long-lived connection pool for the whole process.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock

	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker

	closeOnce sync.Once
}

// NewClient creates an Open-Meteo client.
func NewClient(opts Options) *Client {
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Client{
		endpoints:  opts.Endpoints,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Close releases the connection pool. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
	})
}

// ForecastRequest describes one weather forecast fetch.
type ForecastRequest struct {
	Latitude       float64
	Longitude      float64
	Timezone       string
	ForecastDays   int
	IncludeCurrent bool
	IncludeHourly  bool
	IncludeDaily   bool
}

// WeatherForecast fetches current, hourly, and daily weather sections.
func (c *Client) WeatherForecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	params := baseParams(req.Latitude, req.Longitude, req.Timezone)
	params.Set("forecast_days", strconv.Itoa(clampDays(req.ForecastDays, maxForecastDays)))
	if req.IncludeCurrent {
		params.Set("current", weatherCurrentParams)
	}
	if req.IncludeHourly {
		params.Set("hourly", weatherHourlyParams)
	}
	if req.IncludeDaily {
		params.Set("daily", weatherDailyParams)
	}

	var resp ForecastResponse
	if err := c.getJSON(ctx, EndpointForecast, c.endpoints.Forecast, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AirQualityRequest describes one air quality fetch.
type AirQualityRequest struct {
	Latitude       float64
	Longitude      float64
	Timezone       string
	ForecastDays   int
	IncludeCurrent bool
	IncludeHourly  bool
}

// AirQuality fetches current and hourly air quality sections.
func (c *Client) AirQuality(ctx context.Context, req AirQualityRequest) (*AirQualityResponse, error) {
	params := baseParams(req.Latitude, req.Longitude, req.Timezone)
	params.Set("forecast_days", strconv.Itoa(clampDays(req.ForecastDays, maxAirQualityDays)))
	if req.IncludeCurrent {
		params.Set("current", airQualityCurrentParams)
	}
	if req.IncludeHourly {
		params.Set("hourly", airQualityHourlyParams)
	}

	var resp AirQualityResponse
	if err := c.getJSON(ctx, EndpointAirQuality, c.endpoints.AirQuality, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarineRequest describes one marine forecast fetch.
type MarineRequest struct {
	Latitude       float64
	Longitude      float64
	Timezone       string
	ForecastDays   int
	IncludeCurrent bool
	IncludeHourly  bool
	IncludeDaily   bool
}

// Marine fetches current, hourly, and daily marine sections.
func (c *Client) Marine(ctx context.Context, req MarineRequest) (*MarineResponse, error) {
	params := baseParams(req.Latitude, req.Longitude, req.Timezone)
	params.Set("forecast_days", strconv.Itoa(clampDays(req.ForecastDays, maxMarineDays)))
	if req.IncludeCurrent {
		params.Set("current", marineCurrentParams)
	}
	if req.IncludeHourly {
		params.Set("hourly", marineHourlyParams)
	}
	if req.IncludeDaily {
		params.Set("daily", marineDailyParams)
	}

	var resp MarineResponse
	if err := c.getJSON(ctx, EndpointMarine, c.endpoints.Marine, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SatelliteRequest describes one satellite radiation archive fetch over an
// explicit date range.
type SatelliteRequest struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	StartDate time.Time
	EndDate   time.Time
	Tilt      int // panel tilt angle, degrees from horizontal (0-90)
	Azimuth   int // panel azimuth, degrees from north (0-360)
}

// SolarRadiation fetches hourly irradiance components for a date range.
func (c *Client) SolarRadiation(ctx context.Context, req SatelliteRequest) (*SatelliteResponse, error) {
	params := baseParams(req.Latitude, req.Longitude, req.Timezone)
	params.Set("start_date", req.StartDate.Format("2006-01-02"))
	params.Set("end_date", req.EndDate.Format("2006-01-02"))
	params.Set("hourly", satelliteHourlyParams)
	params.Set("tilt", strconv.Itoa(req.Tilt))
	params.Set("azimuth", strconv.Itoa(req.Azimuth))

	var resp SatelliteResponse
	if err := c.getJSON(ctx, EndpointSatellite, c.endpoints.Satellite, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClimateRequest describes one climate projection fetch over an explicit
// date range, which may reach into the past or the future.
type ClimateRequest struct {
	Latitude              float64
	Longitude             float64
	Timezone              string
	StartDate             time.Time
	EndDate               time.Time
	Model                 string
	DisableBiasCorrection bool
	CellSelection         string // "land", "sea", or "nearest"
}

// ClimateProjection fetches daily climate scenario data for a date range.
func (c *Client) ClimateProjection(ctx context.Context, req ClimateRequest) (*ClimateResponse, error) {
	params := baseParams(req.Latitude, req.Longitude, req.Timezone)
	params.Set("start_date", req.StartDate.Format("2006-01-02"))
	params.Set("end_date", req.EndDate.Format("2006-01-02"))
	params.Set("daily", climateDailyParams)
	params.Set("models", req.Model)
	if req.DisableBiasCorrection {
		params.Set("disable_bias_correction", "true")
	}
	if req.CellSelection != "" {
		params.Set("cell_selection", req.CellSelection)
	}

	var resp ClimateResponse
	if err := c.getJSON(ctx, EndpointClimate, c.endpoints.Climate, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON issues a GET with bounded retries and exponential backoff, then
// decodes the response body into out. Transport errors and non-2xx statuses
// are both retried; the last error is returned once attempts are exhausted.
func (c *Client) getJSON(ctx context.Context, endpoint, baseURL string, params url.Values, out any) error {
	fullURL := baseURL + "?" + params.Encode()
	breaker := c.breakerFor(endpoint)

	start := c.clock.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.FetchDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
		}
	}()

	delay := c.baseDelay
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Debug("api request attempt",
			"endpoint", endpoint, "attempt", attempt, "max_attempts", c.maxRetries)

		body, err := c.doOnce(ctx, breaker, fullURL)
		if err == nil {
			c.logger.Info("api request successful", "endpoint", endpoint, "attempt", attempt)
			c.countFetch(endpoint, "success")
			if decErr := json.Unmarshal(body, out); decErr != nil {
				return fmt.Errorf("decode %s response: %w", endpoint, decErr)
			}
			return nil
		}

		// An open breaker means the endpoint is known-bad; further retries
		// inside this call would fail the same way.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.countFetch(endpoint, "error")
			return fmt.Errorf("%w: %s: %v", ErrCircuitOpen, endpoint, err)
		}

		lastErr = err
		c.logger.Error("api request failed",
			"endpoint", endpoint, "attempt", attempt, "max_attempts", c.maxRetries, "error", err)

		if attempt == c.maxRetries {
			break
		}

		if c.metrics != nil {
			c.metrics.FetchRetries.WithLabelValues(endpoint).Inc()
		}
		if !c.sleep(ctx, delay) {
			return ctx.Err()
		}
		delay *= 2
	}

	c.countFetch(endpoint, "error")
	return fmt.Errorf("%s request failed after %d attempts: %w", endpoint, c.maxRetries, lastErr)
}

// doOnce executes a single HTTP attempt through the endpoint breaker and returns
// the raw response body.
func (c *Client) doOnce(ctx context.Context, breaker *gobreaker.CircuitBreaker, fullURL string) ([]byte, error) {
	result, err := breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(body, 200))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) breakerFor(endpoint string) *gobreaker.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	if b, ok := c.breakers[endpoint]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	c.breakers[endpoint] = b
	return b
}

func (c *Client) countFetch(endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.FetchRequests.WithLabelValues(endpoint, outcome).Inc()
	}
}

// sleep waits for d or until the context is cancelled. Returns false on
// cancellation.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

func baseParams(lat, lon float64, timezone string) url.Values {
	if timezone == "" {
		timezone = "auto"
	}
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"timezone":  {timezone},
	}
}

func clampDays(days, max int) int {
	if days < 1 {
		return 1
	}
	if days > max {
		return max
	}
	return days
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
