package mera

import (
	"fmt"
	"sort"
	"sync"
)

// GRIB1 time range indicators used by the archive.
const (
	TimeRangeInstant     = 0
	TimeRangeExtreme     = 2 // max/min over the period
	TimeRangeAccumulated = 4
)

// GRIB1 level type ids.
const (
	LevelTypeTopOfAtmosphere = 8
	LevelTypeIsotherm        = 20
	LevelTypePressure        = 100
	LevelTypeAboveSea        = 103
	LevelTypeAboveGround     = 105
	LevelTypeEntireAtmos     = 200
)

// Code is the GRIB1 identity of a field: indicatorOfParameter,
// indicatorOfTypeOfLevel, level and timeRangeIndicator.
type Code struct {
	Parameter int `json:"parameter"`
	LevelType int `json:"level_type"`
	Level     int `json:"level"`
	TimeRange int `json:"time_range"`
}

// String renders the code the way it appears inside archive file names.
func (c Code) String() string {
	return fmt.Sprintf("%d_%d_%d_%d", c.Parameter, c.LevelType, c.Level, c.TimeRange)
}

// Accumulated reports whether the field is stored in the forecast stream.
func (c Code) Accumulated() bool {
	return c.TimeRange == TimeRangeAccumulated
}

// Table maps CF standard names to their default code. A Table is immutable
// once built; share it freely between goroutines.
type Table struct {
	codes map[string]Code
}

// NewTable copies entries into a new Table.
func NewTable(entries map[string]Code) Table {
	codes := make(map[string]Code, len(entries))
	for name, c := range entries {
		codes[name] = c
	}
	return Table{codes: codes}
}

// Lookup returns the default code for a base CF name.
func (t Table) Lookup(name string) (Code, bool) {
	c, ok := t.codes[name]
	return c, ok
}

// Len returns the number of names in the table.
func (t Table) Len() int { return len(t.codes) }

// Names returns all base names, sorted.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.codes))
	for name := range t.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesFor returns every base name whose default code equals c, sorted.
func (t Table) NamesFor(c Code) []string {
	var names []string
	for name, code := range t.codes {
		if code == c {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Duplicates returns the codes shared by more than one name.
func (t Table) Duplicates() map[Code][]string {
	byCode := make(map[Code][]string)
	for name, code := range t.codes {
		byCode[code] = append(byCode[code], name)
	}
	dups := make(map[Code][]string)
	for code, names := range byCode {
		if len(names) > 1 {
			sort.Strings(names)
			dups[code] = names
		}
	}
	return dups
}

var (
	defaultTableOnce sync.Once
	defaultTable     Table
)

// DefaultTable returns the table transcribed from the MERA archive technical
// note (Whelan, Hanley, Gleeson, Met Eireann TN65, 2017).
func DefaultTable() Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable(defaultCodes)
	})
	return defaultTable
}

// Kept verbatim from TN65, including the two pairs that share a code
// (water vapour / cloud ice, medium / high cloud).
var defaultCodes = map[string]Code{
	"air_pressure":                                     {1, 105, 0, 0},
	"geopotential":                                     {6, 105, 0, 0},
	"geopotential_height":                              {7, 100, 850, 0},
	"air_temperature":                                  {11, 105, 2, 0},
	"virtual_temperature":                              {12, 105, 2, 0},
	"air_potential_temperature":                        {13, 105, 2, 0},
	"wet_bulb_potential_temperature":                   {14, 105, 2, 0},
	"maximum_temperature":                              {15, 105, 2, 2}, // not a CF standard name
	"minimum_temperature":                              {16, 105, 2, 2}, // not a CF standard name
	"dew_point_temperature":                            {17, 105, 0, 0},
	"visibility_in_air":                                {20, 105, 0, 0},
	"wind_from_direction":                              {31, 105, 10, 0},
	"wind_speed":                                       {32, 105, 10, 0},
	"eastward_wind":                                    {33, 105, 10, 0},
	"northward_wind":                                   {34, 105, 10, 0},
	"upward_air_velocity":                              {40, 100, 850, 0},
	"atmosphere_absolute_vorticity":                    {41, 100, 850, 0},
	"atmosphere_relative_vorticity":                    {43, 100, 850, 0},
	"divergence_of_wind":                               {44, 100, 850, 0},
	"specific_humidity":                                {51, 105, 2, 0},
	"relative_humidity":                                {52, 105, 2, 0},
	"atmosphere_mass_content_of_water_vapor":           {54, 200, 0, 0}, // precipitable water
	"atmosphere_cloud_ice_content":                     {54, 200, 0, 0},
	"precipitation_amount":                             {61, 105, 0, 4},
	"surface_snow_amount":                              {65, 105, 0, 4}, // water equivalent of snow depth
	"ocean_mixed_layer_thickness":                      {67, 105, 0, 0}, // ambiguous, may be the atmospheric mixing layer
	"cloud_area_fraction":                              {71, 105, 0, 0},
	"low_type_cloud_area_fraction":                     {73, 105, 0, 0},
	"medium_type_cloud_area_fraction":                  {74, 105, 0, 0},
	"high_type_cloud_area_fraction":                    {74, 105, 0, 0},
	"atmosphere_mass_content_of_cloud_condensed_water": {76, 200, 0, 0},
	"land_binary_mask":                                 {81, 105, 0, 0}, // 1=land, 0=sea
	"surface_roughness_length":                         {83, 105, 0, 0},
	"surface_albedo":                                   {84, 105, 0, 0},
	"vegetation_area_fraction":                         {87, 105, 0, 0},
	"surface_net_upward_shortwave_flux":                {111, 105, 0, 4},
	"surface_net_upward_longwave_flux":                 {112, 105, 0, 4},
	"toa_net_upward_shortwave_flux":                    {113, 8, 0, 4},
	"toa_outgoing_longwave_flux":                       {114, 8, 0, 4},
	"net_upward_longwave_flux_in_air":                  {115, 105, 0, 4},
	"net_upward_shortwave_flux_in_air":                 {116, 105, 0, 4},
	"surface_downwelling_shortwave_flux_in_air":        {117, 105, 0, 4},
	"surface_upward_sensible_heat_flux":                {122, 105, 0, 4},
	"x_wind_gust":                                      {162, 105, 10, 2}, // MERA specific
	"y_wind_gust":                                      {163, 105, 10, 2}, // MERA specific
}
