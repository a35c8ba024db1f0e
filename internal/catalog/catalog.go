// Package catalog is the static source of truth for measurement parameters
// and upstream measurement models. Registries consult it when lazily creating
// rows; a code missing from the catalog is a programming error, not a runtime
// condition.
package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParameter indicates a parameter code absent from the catalog.
	ErrUnknownParameter = errors.New("unknown parameter code")
	// ErrUnknownModel indicates a model code absent from the catalog.
	ErrUnknownModel = errors.New("unknown model code")
)

// Parameter describes one physical quantity the system can persist.
type Parameter struct {
	Code          string
	Name          string
	Unit          string
	Category      string
	AltitudeLevel string
	IsSurface     bool
	Endpoint      string // upstream endpoint family that produces it
}

// Model describes one upstream data source (forecast model, reanalysis, or
// projection).
type Model struct {
	Code                 string
	Name                 string
	Provider             string
	ProviderCountry      string
	ResolutionKm         float64
	ResolutionDegrees    float64
	ForecastDays         int
	UpdateFrequencyHours int
	TemporalResolution   string
	Coverage             string
	Domain               string
	Active               bool
	Description          string
}

// LookupParameter returns the catalog entry for code, or ErrUnknownParameter.
func LookupParameter(code string) (Parameter, error) {
	p, ok := parameters[code]
	if !ok {
		return Parameter{}, fmt.Errorf("%w: %q", ErrUnknownParameter, code)
	}
	return p, nil
}

// LookupModel returns the catalog entry for code, or ErrUnknownModel.
func LookupModel(code string) (Model, error) {
	m, ok := models[code]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, code)
	}
	return m, nil
}

// Parameters returns every catalog parameter. Order is unspecified.
func Parameters() []Parameter {
	out := make([]Parameter, 0, len(parameters))
	for _, p := range parameters {
		out = append(out, p)
	}
	return out
}

var parameters = indexParameters([]Parameter{
	// Temperature
	{Code: "temp_2m", Name: "Temperature 2m", Unit: "°C", Category: "temperature", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "temp_2m_max", Name: "Temperature Max 2m", Unit: "°C", Category: "temperature", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "temp_2m_min", Name: "Temperature Min 2m", Unit: "°C", Category: "temperature", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "temp_2m_mean", Name: "Temperature Mean 2m", Unit: "°C", Category: "temperature", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "apparent_temp", Name: "Apparent Temperature", Unit: "°C", Category: "temperature", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},

	// Humidity
	{Code: "humidity_2m", Name: "Relative Humidity 2m", Unit: "%", Category: "humidity", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "humidity_2m_max", Name: "Humidity Max", Unit: "%", Category: "humidity", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "humidity_2m_min", Name: "Humidity Min", Unit: "%", Category: "humidity", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},
	{Code: "humidity_2m_mean", Name: "Humidity Mean", Unit: "%", Category: "humidity", AltitudeLevel: "2m", IsSurface: true, Endpoint: "forecast"},

	// Precipitation
	{Code: "precip", Name: "Precipitation", Unit: "mm", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},
	{Code: "precip_sum", Name: "Precipitation Sum", Unit: "mm", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},
	{Code: "precip_prob", Name: "Precipitation Probability", Unit: "%", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},
	{Code: "precip_prob_max", Name: "Precipitation Probability Max", Unit: "%", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},
	{Code: "precip_hours", Name: "Precipitation Hours", Unit: "hours", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},

	// Wind
	{Code: "wind_speed_10m", Name: "Wind Speed 10m", Unit: "km/h", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},
	{Code: "wind_speed_10m_max", Name: "Wind Speed Max 10m", Unit: "km/h", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},
	{Code: "wind_speed_10m_mean", Name: "Wind Speed Mean 10m", Unit: "km/h", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},
	{Code: "wind_dir_10m", Name: "Wind Direction 10m", Unit: "°", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},
	{Code: "wind_dir_10m_dominant", Name: "Wind Direction Dominant", Unit: "°", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},
	{Code: "wind_gusts_10m_max", Name: "Wind Gusts Max 10m", Unit: "km/h", Category: "wind", AltitudeLevel: "10m", IsSurface: true, Endpoint: "forecast"},

	// Cloud and solar
	{Code: "cloud_cover", Name: "Cloud Cover", Unit: "%", Category: "clouds", AltitudeLevel: "total", IsSurface: true, Endpoint: "forecast"},
	{Code: "cloud_cover_mean", Name: "Cloud Cover Mean", Unit: "%", Category: "clouds", AltitudeLevel: "total", IsSurface: true, Endpoint: "forecast"},
	{Code: "sunshine_duration", Name: "Sunshine Duration", Unit: "seconds", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},
	{Code: "uv_index_max", Name: "UV Index Max", Unit: "index", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},

	// WMO weather code
	{Code: "weather_code", Name: "Weather Code (WMO)", Unit: "code", Category: "weather", AltitudeLevel: "surface", IsSurface: true, Endpoint: "forecast"},

	// Air quality
	{Code: "pm2_5", Name: "PM2.5", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "pm10", Name: "PM10", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "aqi_european", Name: "European AQI", Unit: "index", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "aqi_us", Name: "US AQI", Unit: "index", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "no2", Name: "Nitrogen Dioxide (NO2)", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "o3", Name: "Ozone (O3)", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "so2", Name: "Sulphur Dioxide (SO2)", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "co", Name: "Carbon Monoxide (CO)", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "dust", Name: "Dust", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},
	{Code: "nh3", Name: "Ammonia (NH3)", Unit: "µg/m³", Category: "air_quality", AltitudeLevel: "surface", IsSurface: true, Endpoint: "air_quality"},

	// Marine
	{Code: "wave_height", Name: "Wave Height", Unit: "m", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wave_height_max", Name: "Wave Height Max", Unit: "m", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wave_direction", Name: "Wave Direction", Unit: "°", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wave_direction_dominant", Name: "Wave Direction Dominant", Unit: "°", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wave_period", Name: "Wave Period", Unit: "s", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wave_period_max", Name: "Wave Period Max", Unit: "s", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "swell_wave_height", Name: "Swell Wave Height", Unit: "m", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "swell_wave_height_max", Name: "Swell Wave Height Max", Unit: "m", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "swell_wave_direction", Name: "Swell Wave Direction", Unit: "°", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "swell_wave_direction_dominant", Name: "Swell Direction Dominant", Unit: "°", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "swell_wave_period", Name: "Swell Wave Period", Unit: "s", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "wind_wave_height", Name: "Wind Wave Height", Unit: "m", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "sea_temp", Name: "Sea Surface Temperature", Unit: "°C", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "sea_temp_mean", Name: "Sea Temperature Mean", Unit: "°C", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "ocean_current_vel", Name: "Ocean Current Velocity", Unit: "m/s", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "ocean_current_vel_max", Name: "Ocean Current Velocity Max", Unit: "m/s", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},
	{Code: "ocean_current_dir", Name: "Ocean Current Direction", Unit: "°", Category: "marine", AltitudeLevel: "surface", IsSurface: true, Endpoint: "marine"},

	// Satellite radiation
	{Code: "shortwave_rad", Name: "Shortwave Radiation", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},
	{Code: "direct_rad", Name: "Direct Radiation", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},
	{Code: "diffuse_rad", Name: "Diffuse Radiation", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},
	{Code: "dni", Name: "Direct Normal Irradiance (DNI)", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},
	{Code: "gti", Name: "Global Tilted Irradiance (GTI)", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},
	{Code: "terrestrial_rad", Name: "Terrestrial Radiation", Unit: "W/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "satellite"},

	// Climate
	{Code: "precip_rain_sum", Name: "Rain Sum", Unit: "mm", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "climate"},
	{Code: "precip_snow_sum", Name: "Snowfall Sum", Unit: "mm", Category: "precipitation", AltitudeLevel: "surface", IsSurface: true, Endpoint: "climate"},
	{Code: "pressure_msl_mean", Name: "Pressure Mean MSL", Unit: "hPa", Category: "pressure", AltitudeLevel: "surface", IsSurface: true, Endpoint: "climate"},
	{Code: "radiation_shortwave_sum", Name: "Shortwave Radiation Sum", Unit: "MJ/m²", Category: "solar", AltitudeLevel: "surface", IsSurface: true, Endpoint: "climate"},
	{Code: "soil_moisture_0_10cm", Name: "Soil Moisture 0-10cm", Unit: "m³/m³", Category: "soil", AltitudeLevel: "0-10cm", IsSurface: false, Endpoint: "climate"},
})

var models = indexModels([]Model{
	{
		Code: "OM_FORECAST", Name: "Open-Meteo Forecast Model",
		Provider: "Open-Meteo", ProviderCountry: "Switzerland",
		ResolutionKm: 11.0, ResolutionDegrees: 0.1,
		ForecastDays: 16, UpdateFrequencyHours: 6,
		TemporalResolution: "hourly", Coverage: "global", Domain: "weather", Active: true,
		Description: "Open-Meteo weather forecast model with global coverage. Provides current, hourly, and daily forecasts.",
	},
	{
		Code: "CAMS_EUROPE", Name: "CAMS Europe Air Quality Model",
		Provider: "Copernicus", ProviderCountry: "European Union",
		ResolutionKm: 10.0, ResolutionDegrees: 0.1,
		ForecastDays: 5, UpdateFrequencyHours: 6,
		TemporalResolution: "hourly", Coverage: "regional", Domain: "air_quality", Active: true,
		Description: "CAMS Europe air quality forecasts. Covers Europe with high-resolution data for PM2.5, PM10, and pollutants.",
	},
	{
		Code: "ECMWF_WAVES", Name: "ECMWF Wave Model",
		Provider: "ECMWF", ProviderCountry: "European Union",
		ResolutionKm: 28.0, ResolutionDegrees: 0.25,
		ForecastDays: 10, UpdateFrequencyHours: 12,
		TemporalResolution: "hourly", Coverage: "global", Domain: "marine", Active: true,
		Description: "ECMWF wave and marine weather forecasts. Provides wave height, direction, period, and marine parameters.",
	},
	{
		Code: "CAMS_SOLAR", Name: "CAMS Solar Radiation",
		Provider: "Copernicus", ProviderCountry: "European Union",
		ResolutionKm: 5.0, ResolutionDegrees: 0.05,
		ForecastDays: 16, UpdateFrequencyHours: 3,
		TemporalResolution: "15minutely", Coverage: "global", Domain: "satellite", Active: true,
		Description: "CAMS solar radiation data. High-resolution irradiance for solar energy applications (15-30 minute resolution).",
	},
	{
		Code: "CMCC_CM2_VHR4", Name: "CMCC Climate Model",
		Provider: "CMCC", ProviderCountry: "Italy",
		ResolutionKm: 25.0, ResolutionDegrees: 0.22,
		TemporalResolution: "daily", Coverage: "global", Domain: "climate", Active: true,
		Description: "CMCC climate change projections. Long-term projections for historical and future scenarios.",
	},
	{
		Code: "EC_Earth3P_HR", Name: "EC-Earth3P High Resolution",
		Provider: "EC-Earth Consortium", ProviderCountry: "European Union",
		ResolutionKm: 29.0, ResolutionDegrees: 0.25,
		TemporalResolution: "daily", Coverage: "global", Domain: "climate", Active: true,
		Description: "EC-Earth3P-HR climate projections from the HighResMIP ensemble (1950-2050).",
	},
	{
		Code: "MRI_AGCM3_2_S", Name: "MRI-AGCM3-2-S Climate Model",
		Provider: "MRI", ProviderCountry: "Japan",
		ResolutionKm: 20.0, ResolutionDegrees: 0.19,
		TemporalResolution: "daily", Coverage: "global", Domain: "climate", Active: true,
		Description: "MRI-AGCM3-2-S high resolution climate projections (1950-2050).",
	},
})

func indexParameters(list []Parameter) map[string]Parameter {
	idx := make(map[string]Parameter, len(list))
	for _, p := range list {
		if _, dup := idx[p.Code]; dup {
			panic("catalog: duplicate parameter code " + p.Code)
		}
		idx[p.Code] = p
	}
	return idx
}

func indexModels(list []Model) map[string]Model {
	idx := make(map[string]Model, len(list))
	for _, m := range list {
		if _, dup := idx[m.Code]; dup {
			panic("catalog: duplicate model code " + m.Code)
		}
		idx[m.Code] = m
	}
	return idx
}
