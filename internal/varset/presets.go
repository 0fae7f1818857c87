package varset

import "github.com/couchcryptid/mera-explorer/internal/mera"

// Preset names accepted by ByName.
const (
	PresetNeuralLAM  = "neurallam"
	PresetAdditional = "additional"
	PresetAll        = "neurallam-all"
	PresetSample     = "mydata"
)

// NeuralLAM returns the inputs of the Neural-LAM limited-area model
// (Oskarsson et al. 2023, appendix C) in model order. The lowest MEPS model
// level (65 m) is approximated by 60 m.
func NeuralLAM() []mera.Variable {
	return concat(
		names(
			"air_pressure_at_surface_level",
			"air_pressure_at_sea_level",
			"net_upward_longwave_flux_in_air",
			"net_upward_shortwave_flux_in_air",
			"atmosphere_mass_content_of_water_vapor",
		),
		mera.AddLevels([]string{"relative_humidity", "air_temperature"}, []int{2, 60}, mera.UnitMetres),
		mera.AddLevels([]string{"eastward_wind", "northward_wind"}, []int{60}, mera.UnitMetres),
		mera.AddLevels([]string{"geopotential"}, []int{1000}, mera.UnitHectopascal),
		mera.AddLevels([]string{"eastward_wind", "northward_wind", "air_temperature"}, []int{850}, mera.UnitHectopascal),
		mera.AddLevels([]string{"geopotential", "air_temperature"}, []int{500}, mera.UnitHectopascal),
	)
}

// Additional returns extra fields useful for diagnostics and static features.
func Additional() []mera.Variable {
	return concat(
		names(
			"precipitation_amount",
			"land_binary_mask",
			"surface_roughness_length",
			"surface_albedo",
			"vegetation_area_fraction",
			"cloud_area_fraction",
			"toa_net_upward_shortwave_flux",
			"toa_outgoing_longwave_flux",
		),
		mera.AddLevels([]string{"eastward_wind", "northward_wind"}, []int{10}, mera.UnitMetres),
		mera.AddLevels([]string{"eastward_wind", "northward_wind", "upward_air_velocity", "air_temperature"}, []int{700}, mera.UnitHectopascal),
	)
}

// Sample is a starting point for ad hoc availability checks.
func Sample() []mera.Variable {
	return concat(
		names(
			"air_pressure_at_surface_level",
			"air_pressure_at_sea_level",
			"precipitation_amount",
		),
		mera.AddLevels([]string{"relative_humidity", "air_temperature"}, []int{2, 100}, mera.UnitMetres),
		mera.AddLevels([]string{"eastward_wind", "northward_wind"}, []int{10}, mera.UnitMetres),
		mera.AddLevels([]string{"air_temperature", "upward_air_velocity"}, []int{700}, mera.UnitHectopascal),
		mera.AddLevels([]string{"geopotential", "eastward_wind", "northward_wind", "air_temperature"}, []int{1000, 850, 500}, mera.UnitHectopascal),
	)
}

// ByName returns a preset, or false if name is not one.
func ByName(name string) ([]mera.Variable, bool) {
	switch name {
	case PresetNeuralLAM:
		return NeuralLAM(), true
	case PresetAdditional:
		return Additional(), true
	case PresetAll:
		return concat(NeuralLAM(), Additional()), true
	case PresetSample:
		return Sample(), true
	default:
		return nil, false
	}
}

func names(ns ...string) []mera.Variable {
	vars := make([]mera.Variable, len(ns))
	for i, n := range ns {
		v, err := mera.ParseVariable(n)
		if err != nil {
			panic(err)
		}
		vars[i] = v
	}
	return vars
}

func concat(groups ...[]mera.Variable) []mera.Variable {
	var out []mera.Variable
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
