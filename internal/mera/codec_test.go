package mera_test

import (
	"errors"
	"testing"

	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_EveryNameResolvesToItsDefault(t *testing.T) {
	table := mera.DefaultTable()
	require.NotZero(t, table.Len())

	for _, name := range table.Names() {
		want, ok := table.Lookup(name)
		require.True(t, ok, name)

		got, err := table.ResolveName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestTable_CopiesInput(t *testing.T) {
	entries := map[string]mera.Code{"air_temperature": {11, 105, 2, 0}}
	table := mera.NewTable(entries)
	entries["air_temperature"] = mera.Code{99, 1, 1, 1}
	entries["extra"] = mera.Code{1, 1, 1, 1}

	c, ok := table.Lookup("air_temperature")
	require.True(t, ok)
	assert.Equal(t, mera.Code{11, 105, 2, 0}, c)
	assert.Equal(t, 1, table.Len())
}

func TestTable_Duplicates(t *testing.T) {
	dups := mera.DefaultTable().Duplicates()

	assert.Equal(t,
		[]string{"atmosphere_cloud_ice_content", "atmosphere_mass_content_of_water_vapor"},
		dups[mera.Code{54, 200, 0, 0}])
	assert.Equal(t,
		[]string{"high_type_cloud_area_fraction", "medium_type_cloud_area_fraction"},
		dups[mera.Code{74, 105, 0, 0}])
	assert.Len(t, dups, 2)
}

func TestTable_NamesFor(t *testing.T) {
	assert.Equal(t, []string{"precipitation_amount"}, mera.DefaultTable().NamesFor(mera.Code{61, 105, 0, 4}))
	assert.Empty(t, mera.DefaultTable().NamesFor(mera.Code{999, 0, 0, 0}))
}

func TestResolve_LevelOverrides(t *testing.T) {
	table := mera.DefaultTable()

	tests := []struct {
		name string
		want mera.Code
	}{
		{"air_temperature_at_10_metres", mera.Code{11, 105, 10, 0}},
		{"air_temperature_at_850_hPa", mera.Code{11, 100, 850, 0}},
		{"air_temperature_at_0_kelvin", mera.Code{11, 20, 0, 0}},
		{"geopotential_at_500_hPa", mera.Code{6, 100, 500, 0}},
		{"eastward_wind_at_100_metres", mera.Code{33, 105, 100, 0}},
		{"air_pressure_at_sea_level", mera.Code{1, 103, 0, 0}},
		{"air_pressure_at_surface_level", mera.Code{1, 105, 0, 0}},
		{"precipitation_amount", mera.Code{61, 105, 0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ResolveName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	table := mera.DefaultTable()

	tests := []struct {
		name string
		want error
	}{
		{"not_a_cf_name", mera.ErrUnknownVariable},
		{"not_a_cf_name_at_850_hPa", mera.ErrUnknownVariable},
		{"air_temperature_at_850_furlongs", mera.ErrUnsupportedUnit},
		{"air_temperature_at_high_hPa", mera.ErrMalformedName},
		{"air_temperature_at_850", mera.ErrMalformedName},
		{"air_temperature_at_850_hPa_extra", mera.ErrMalformedName},
		{"_at_850_hPa", mera.ErrMalformedName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.ResolveName(tt.name)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_ParameterAndTimeRangeFromTable(t *testing.T) {
	table := mera.DefaultTable()
	for _, name := range table.Names() {
		def, _ := table.Lookup(name)
		for _, v := range []mera.Variable{
			mera.AtLevel(name, 500, mera.UnitHectopascal),
			mera.AtLevel(name, 2, mera.UnitMetres),
			{Name: name, Level: mera.Level{Value: "sea", Unit: mera.UnitLevel}},
		} {
			got, err := table.Resolve(v)
			require.NoError(t, err)
			assert.Equal(t, def.Parameter, got.Parameter, v.String())
			assert.Equal(t, def.TimeRange, got.TimeRange, v.String())
		}
	}
}

func TestParseVariable_RoundTrip(t *testing.T) {
	for _, v := range []mera.Variable{
		mera.NewVariable("air_temperature"),
		mera.AtLevel("air_temperature", 850, mera.UnitHectopascal),
		mera.AtLevel("x_wind_gust", 10, mera.UnitMetres),
		{Name: "air_pressure", Level: mera.Level{Value: "sea", Unit: mera.UnitLevel}},
	} {
		got, err := mera.ParseVariable(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestAddLevels_NameMajor(t *testing.T) {
	vars := mera.AddLevels([]string{"air_temperature", "geopotential"}, []int{500, 850}, mera.UnitHectopascal)
	assert.Equal(t, []string{
		"air_temperature_at_500_hPa",
		"air_temperature_at_850_hPa",
		"geopotential_at_500_hPa",
		"geopotential_at_850_hPa",
	}, mera.Names(vars))
}

func TestParseVariables_StopsAtFirstError(t *testing.T) {
	_, err := mera.ParseVariables([]string{"air_temperature", "air_temperature_at_1"})
	require.Error(t, err)
	assert.Equal(t, mera.KindMalformedName, mera.KindOf(err))
}

func TestError_IsAndKind(t *testing.T) {
	_, err := mera.DefaultTable().ResolveName("nope")
	require.Error(t, err)

	assert.True(t, errors.Is(err, mera.ErrUnknownVariable))
	assert.False(t, errors.Is(err, mera.ErrMalformedName))
	assert.Equal(t, mera.KindUnknownVariable, mera.KindOf(err))
	assert.Contains(t, err.Error(), `unknown_variable "nope"`)

	wrapped := errors.Join(errors.New("context"), mera.MissingFile("/data/x"))
	assert.ErrorIs(t, wrapped, mera.ErrMissingFile)
	assert.Equal(t, mera.Kind(0), mera.KindOf(errors.New("plain")))
}
