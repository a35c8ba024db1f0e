package openmeteo

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Envelope is the metadata block returned by every Open-Meteo endpoint.
type Envelope struct {
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	GenerationTimeMs float64  `json:"generationtime_ms"`
	UTCOffsetSeconds int      `json:"utc_offset_seconds"`
	Timezone         string   `json:"timezone" validate:"required"`
	Elevation        *float64 `json:"elevation"`
}

// ==================== WEATHER ====================

// CurrentWeather holds current conditions. All values are optional; the
// upstream omits quantities it cannot produce for a coordinate.
type CurrentWeather struct {
	Time               string   `json:"time"`
	Temperature2m      *float64 `json:"temperature_2m" validate:"omitempty,gte=-90,lte=60"`
	RelativeHumidity2m *int     `json:"relative_humidity_2m" validate:"omitempty,gte=0,lte=100"`
	ApparentTemp       *float64 `json:"apparent_temperature" validate:"omitempty,gte=-90,lte=60"`
	Precipitation      *float64 `json:"precipitation" validate:"omitempty,gte=0"`
	WeatherCode        *int     `json:"weather_code" validate:"omitempty,gte=0,lte=99"`
	CloudCover         *int     `json:"cloud_cover" validate:"omitempty,gte=0,lte=100"`
	WindSpeed10m       *float64 `json:"wind_speed_10m" validate:"omitempty,gte=0"`
	WindDirection10m   *int     `json:"wind_direction_10m" validate:"omitempty,gte=0,lte=360"`
}

// WeatherHourly is the struct-of-arrays hourly forecast section. Every value
// array is parallel to Time.
type WeatherHourly struct {
	Time                  []string   `json:"time" validate:"required,min=1"`
	Temperature2m         []*float64 `json:"temperature_2m" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	RelativeHumidity2m    []*float64 `json:"relative_humidity_2m" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	PrecipitationProb     []*float64 `json:"precipitation_probability" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	Precipitation         []*float64 `json:"precipitation" validate:"omitempty,dive,omitempty,gte=0"`
	WeatherCode           []*float64 `json:"weather_code" validate:"omitempty,dive,omitempty,gte=0,lte=99"`
	WindSpeed10m          []*float64 `json:"wind_speed_10m" validate:"omitempty,dive,omitempty,gte=0"`
	WindDirection10m      []*float64 `json:"wind_direction_10m" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
}

// WeatherDaily is the struct-of-arrays daily forecast section.
type WeatherDaily struct {
	Time                     []string   `json:"time" validate:"required,min=1"`
	Temperature2mMax         []*float64 `json:"temperature_2m_max" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	Temperature2mMin         []*float64 `json:"temperature_2m_min" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	PrecipitationSum         []*float64 `json:"precipitation_sum" validate:"omitempty,dive,omitempty,gte=0"`
	PrecipitationHours       []*float64 `json:"precipitation_hours" validate:"omitempty,dive,omitempty,gte=0,lte=24"`
	PrecipitationProbMax     []*int     `json:"precipitation_probability_max" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	WeatherCode              []*int     `json:"weather_code" validate:"omitempty,dive,omitempty,gte=0,lte=99"`
	Sunrise                  []*string  `json:"sunrise"`
	Sunset                   []*string  `json:"sunset"`
	SunshineDuration         []*float64 `json:"sunshine_duration" validate:"omitempty,dive,omitempty,gte=0"`
	UVIndexMax               []*float64 `json:"uv_index_max" validate:"omitempty,dive,omitempty,gte=0"`
	WindSpeed10mMax          []*float64 `json:"wind_speed_10m_max" validate:"omitempty,dive,omitempty,gte=0"`
	WindGusts10mMax          []*float64 `json:"wind_gusts_10m_max" validate:"omitempty,dive,omitempty,gte=0"`
	WindDirection10mDominant []*int     `json:"wind_direction_10m_dominant" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
}

// ForecastResponse is the full weather forecast payload.
type ForecastResponse struct {
	Envelope
	Current *CurrentWeather `json:"current"`
	Hourly  *WeatherHourly  `json:"hourly"`
	Daily   *WeatherDaily   `json:"daily"`
}

// ==================== AIR QUALITY ====================

type CurrentAirQuality struct {
	Time            string   `json:"time"`
	PM25            *float64 `json:"pm2_5" validate:"omitempty,gte=0"`
	PM10            *float64 `json:"pm10" validate:"omitempty,gte=0"`
	EuropeanAQI     *int     `json:"european_aqi" validate:"omitempty,gte=0"`
	USAQI           *int     `json:"us_aqi" validate:"omitempty,gte=0"`
	NitrogenDioxide *float64 `json:"nitrogen_dioxide" validate:"omitempty,gte=0"`
	Ozone           *float64 `json:"ozone" validate:"omitempty,gte=0"`
	SulphurDioxide  *float64 `json:"sulphur_dioxide" validate:"omitempty,gte=0"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide" validate:"omitempty,gte=0"`
	Dust            *float64 `json:"dust" validate:"omitempty,gte=0"`
	Ammonia         *float64 `json:"ammonia" validate:"omitempty,gte=0"`
}

type AirQualityHourly struct {
	Time            []string   `json:"time" validate:"required,min=1"`
	PM25            []*float64 `json:"pm2_5" validate:"omitempty,dive,omitempty,gte=0"`
	PM10            []*float64 `json:"pm10" validate:"omitempty,dive,omitempty,gte=0"`
	EuropeanAQI     []*float64 `json:"european_aqi" validate:"omitempty,dive,omitempty,gte=0"`
	USAQI           []*float64 `json:"us_aqi" validate:"omitempty,dive,omitempty,gte=0"`
	NitrogenDioxide []*float64 `json:"nitrogen_dioxide" validate:"omitempty,dive,omitempty,gte=0"`
	Ozone           []*float64 `json:"ozone" validate:"omitempty,dive,omitempty,gte=0"`
	SulphurDioxide  []*float64 `json:"sulphur_dioxide" validate:"omitempty,dive,omitempty,gte=0"`
	CarbonMonoxide  []*float64 `json:"carbon_monoxide" validate:"omitempty,dive,omitempty,gte=0"`
}

type AirQualityResponse struct {
	Envelope
	Current *CurrentAirQuality `json:"current"`
	Hourly  *AirQualityHourly  `json:"hourly"`
}

// ==================== MARINE ====================

type CurrentMarine struct {
	Time                  string   `json:"time"`
	WaveHeight            *float64 `json:"wave_height" validate:"omitempty,gte=0"`
	WaveDirection         *int     `json:"wave_direction" validate:"omitempty,gte=0,lte=360"`
	WavePeriod            *float64 `json:"wave_period" validate:"omitempty,gte=0"`
	SwellWaveHeight       *float64 `json:"swell_wave_height" validate:"omitempty,gte=0"`
	SwellWaveDirection    *int     `json:"swell_wave_direction" validate:"omitempty,gte=0,lte=360"`
	SwellWavePeriod       *float64 `json:"swell_wave_period" validate:"omitempty,gte=0"`
	WindWaveHeight        *float64 `json:"wind_wave_height" validate:"omitempty,gte=0"`
	SeaSurfaceTemperature *float64 `json:"sea_surface_temperature" validate:"omitempty,gte=-5,lte=50"`
	OceanCurrentVelocity  *float64 `json:"ocean_current_velocity" validate:"omitempty,gte=0"`
	OceanCurrentDirection *int     `json:"ocean_current_direction" validate:"omitempty,gte=0,lte=360"`
}

type MarineHourly struct {
	Time                  []string   `json:"time" validate:"required,min=1"`
	WaveHeight            []*float64 `json:"wave_height" validate:"omitempty,dive,omitempty,gte=0"`
	WaveDirection         []*float64 `json:"wave_direction" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
	WavePeriod            []*float64 `json:"wave_period" validate:"omitempty,dive,omitempty,gte=0"`
	SwellWaveHeight       []*float64 `json:"swell_wave_height" validate:"omitempty,dive,omitempty,gte=0"`
	SwellWaveDirection    []*float64 `json:"swell_wave_direction" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
	SwellWavePeriod       []*float64 `json:"swell_wave_period" validate:"omitempty,dive,omitempty,gte=0"`
	WindWaveHeight        []*float64 `json:"wind_wave_height" validate:"omitempty,dive,omitempty,gte=0"`
	SeaSurfaceTemperature []*float64 `json:"sea_surface_temperature" validate:"omitempty,dive,omitempty,gte=-5,lte=50"`
}

type MarineDaily struct {
	Time                       []string   `json:"time" validate:"required,min=1"`
	WaveHeightMax              []*float64 `json:"wave_height_max" validate:"omitempty,dive,omitempty,gte=0"`
	WaveDirectionDominant      []*int     `json:"wave_direction_dominant" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
	WavePeriodMax              []*float64 `json:"wave_period_max" validate:"omitempty,dive,omitempty,gte=0"`
	SwellWaveHeightMax         []*float64 `json:"swell_wave_height_max" validate:"omitempty,dive,omitempty,gte=0"`
	SwellWaveDirectionDominant []*int     `json:"swell_wave_direction_dominant" validate:"omitempty,dive,omitempty,gte=0,lte=360"`
	SeaSurfaceTemperatureMean  []*float64 `json:"sea_surface_temperature_mean" validate:"omitempty,dive,omitempty,gte=-5,lte=50"`
	OceanCurrentVelocityMax    []*float64 `json:"ocean_current_velocity_max" validate:"omitempty,dive,omitempty,gte=0"`
}

type MarineResponse struct {
	Envelope
	Current *CurrentMarine `json:"current"`
	Hourly  *MarineHourly  `json:"hourly"`
	Daily   *MarineDaily   `json:"daily"`
}

// ==================== SATELLITE RADIATION ====================

// SatelliteHourly holds hourly (or sub-hourly) irradiance components. Raw
// values are never persisted directly; they feed the daily aggregation.
type SatelliteHourly struct {
	Time                   []string   `json:"time" validate:"required,min=1"`
	ShortwaveRadiation     []*float64 `json:"shortwave_radiation" validate:"omitempty,dive,omitempty,gte=0"`
	DirectRadiation        []*float64 `json:"direct_radiation" validate:"omitempty,dive,omitempty,gte=0"`
	DiffuseRadiation       []*float64 `json:"diffuse_radiation" validate:"omitempty,dive,omitempty,gte=0"`
	DirectNormalIrradiance []*float64 `json:"direct_normal_irradiance" validate:"omitempty,dive,omitempty,gte=0"`
	GlobalTiltedIrradiance []*float64 `json:"global_tilted_irradiance" validate:"omitempty,dive,omitempty,gte=0"`
	TerrestrialRadiation   []*float64 `json:"terrestrial_radiation" validate:"omitempty,dive,omitempty,gte=0"`
}

type SatelliteResponse struct {
	Envelope
	Hourly *SatelliteHourly `json:"hourly"`
}

// ==================== CLIMATE PROJECTIONS ====================

type ClimateDaily struct {
	Time                   []string   `json:"time" validate:"required,min=1"`
	Temperature2mMax       []*float64 `json:"temperature_2m_max" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	Temperature2mMin       []*float64 `json:"temperature_2m_min" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	Temperature2mMean      []*float64 `json:"temperature_2m_mean" validate:"omitempty,dive,omitempty,gte=-90,lte=60"`
	PrecipitationSum       []*float64 `json:"precipitation_sum" validate:"omitempty,dive,omitempty,gte=0"`
	RainSum                []*float64 `json:"rain_sum" validate:"omitempty,dive,omitempty,gte=0"`
	SnowfallSum            []*float64 `json:"snowfall_sum" validate:"omitempty,dive,omitempty,gte=0"`
	RelativeHumidity2mMax  []*float64 `json:"relative_humidity_2m_max" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	RelativeHumidity2mMin  []*float64 `json:"relative_humidity_2m_min" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	RelativeHumidity2mMean []*float64 `json:"relative_humidity_2m_mean" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	WindSpeed10mMean       []*float64 `json:"wind_speed_10m_mean" validate:"omitempty,dive,omitempty,gte=0"`
	WindSpeed10mMax        []*float64 `json:"wind_speed_10m_max" validate:"omitempty,dive,omitempty,gte=0"`
	PressureMSLMean        []*float64 `json:"pressure_msl_mean" validate:"omitempty,dive,omitempty,gte=800,lte=1100"`
	CloudCoverMean         []*float64 `json:"cloud_cover_mean" validate:"omitempty,dive,omitempty,gte=0,lte=100"`
	ShortwaveRadiationSum  []*float64 `json:"shortwave_radiation_sum" validate:"omitempty,dive,omitempty,gte=0"`
	SoilMoisture0To10cm    []*float64 `json:"soil_moisture_0_to_10cm_mean" validate:"omitempty,dive,omitempty,gte=0,lte=1"`
}

type ClimateResponse struct {
	Envelope
	Daily *ClimateDaily `json:"daily"`
}

var validate = validator.New()

// Validate checks field-level constraints on a decoded payload. A violation
// means the upstream sent a structurally valid but semantically broken
// response; callers treat it as a non-retryable per-location failure.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("payload validation: %w", err)
	}
	return nil
}
