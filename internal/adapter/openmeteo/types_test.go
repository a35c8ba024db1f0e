package openmeteo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func validEnvelope() Envelope {
	return Envelope{
		Latitude:  40.4,
		Longitude: -3.7,
		Timezone:  "Europe/Madrid",
	}
}

func TestValidate_Envelope(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Envelope)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *Envelope) {}},
		{name: "latitude too high", mutate: func(e *Envelope) { e.Latitude = 91 }, wantErr: true},
		{name: "latitude too low", mutate: func(e *Envelope) { e.Latitude = -91 }, wantErr: true},
		{name: "longitude too high", mutate: func(e *Envelope) { e.Longitude = 181 }, wantErr: true},
		{name: "missing timezone", mutate: func(e *Envelope) { e.Timezone = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			tt.mutate(&env)
			err := Validate(env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_CurrentWeather(t *testing.T) {
	t.Run("humidity above 100 rejected", func(t *testing.T) {
		cw := CurrentWeather{
			Time:               "2026-08-31T12:00",
			RelativeHumidity2m: intPtr(101),
		}
		assert.Error(t, Validate(cw))
	})

	t.Run("wind direction above 360 rejected", func(t *testing.T) {
		cw := CurrentWeather{
			Time:             "2026-08-31T12:00",
			WindDirection10m: intPtr(400),
		}
		assert.Error(t, Validate(cw))
	})

	t.Run("nil optional fields accepted", func(t *testing.T) {
		cw := CurrentWeather{Time: "2026-08-31T12:00"}
		assert.NoError(t, Validate(cw))
	})
}

func TestValidate_WeatherHourly(t *testing.T) {
	t.Run("empty time axis rejected", func(t *testing.T) {
		h := WeatherHourly{}
		assert.Error(t, Validate(h))
	})

	t.Run("nil entries in value arrays accepted", func(t *testing.T) {
		h := WeatherHourly{
			Time:          []string{"2026-08-31T12:00", "2026-08-31T13:00"},
			Temperature2m: []*float64{floatPtr(31.4), nil},
		}
		assert.NoError(t, Validate(h))
	})

	t.Run("out-of-range entry rejected", func(t *testing.T) {
		h := WeatherHourly{
			Time:               []string{"2026-08-31T12:00"},
			RelativeHumidity2m: []*float64{floatPtr(140)},
		}
		assert.Error(t, Validate(h))
	})
}

func TestValidate_SatelliteHourly(t *testing.T) {
	t.Run("negative irradiance rejected", func(t *testing.T) {
		h := SatelliteHourly{
			Time:               []string{"2026-08-31T12:00"},
			ShortwaveRadiation: []*float64{floatPtr(-5)},
		}
		assert.Error(t, Validate(h))
	})

	t.Run("zero irradiance accepted", func(t *testing.T) {
		h := SatelliteHourly{
			Time:               []string{"2026-08-31T00:00"},
			ShortwaveRadiation: []*float64{floatPtr(0)},
		}
		assert.NoError(t, Validate(h))
	})
}

func TestValidate_ForecastResponse(t *testing.T) {
	resp := ForecastResponse{
		Envelope: validEnvelope(),
		Hourly: &WeatherHourly{
			Time:          []string{"2026-08-31T12:00"},
			Temperature2m: []*float64{floatPtr(31.4)},
		},
	}
	require.NoError(t, Validate(resp))

	resp.Envelope.Latitude = 200
	assert.Error(t, Validate(resp))
}
