package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupParameter(t *testing.T) {
	p, err := LookupParameter("temp_2m")
	require.NoError(t, err)
	assert.Equal(t, "Temperature 2m", p.Name)
	assert.Equal(t, "°C", p.Unit)
	assert.Equal(t, "temperature", p.Category)
	assert.Equal(t, "2m", p.AltitudeLevel)
	assert.True(t, p.IsSurface)
	assert.Equal(t, "forecast", p.Endpoint)
}

func TestLookupParameter_Unknown(t *testing.T) {
	_, err := LookupParameter("bogus_param")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestLookupModel(t *testing.T) {
	m, err := LookupModel("CAMS_SOLAR")
	require.NoError(t, err)
	assert.Equal(t, "Copernicus", m.Provider)
	assert.Equal(t, "satellite", m.Domain)
	assert.Equal(t, "15minutely", m.TemporalResolution)
}

func TestLookupModel_Unknown(t *testing.T) {
	_, err := LookupModel("NO_SUCH_MODEL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestLookupModel_AllDomainsCovered(t *testing.T) {
	for _, code := range []string{"OM_FORECAST", "CAMS_EUROPE", "ECMWF_WAVES", "CAMS_SOLAR", "EC_Earth3P_HR"} {
		_, err := LookupModel(code)
		assert.NoError(t, err, code)
	}
}

func TestParameters_SoilMoistureIsSubsurface(t *testing.T) {
	p, err := LookupParameter("soil_moisture_0_10cm")
	require.NoError(t, err)
	assert.False(t, p.IsSurface)
}
