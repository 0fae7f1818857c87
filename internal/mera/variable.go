package mera

import (
	"strconv"
	"strings"
)

// Unit qualifies the value of a vertical level suffix.
type Unit string

const (
	UnitHectopascal Unit = "hPa"
	UnitMetres      Unit = "metres"
	UnitKelvin      Unit = "kelvin"
	// UnitLevel names a reference surface rather than a height, as in
	// "air_pressure_at_sea_level" or "air_pressure_at_surface_level".
	UnitLevel Unit = "level"
)

const levelSeparator = "_at_"

// Level is the optional vertical qualifier of a Variable.
type Level struct {
	Value string
	Unit  Unit
}

// Variable is a CF standard name, optionally qualified by a vertical level.
// The zero Level means the table default applies.
type Variable struct {
	Name  string
	Level Level
}

// NewVariable returns an unqualified variable.
func NewVariable(name string) Variable {
	return Variable{Name: name}
}

// AtLevel returns name qualified with a numeric level.
func AtLevel(name string, level int, unit Unit) Variable {
	return Variable{Name: name, Level: Level{Value: strconv.Itoa(level), Unit: unit}}
}

// HasLevel reports whether v carries a level suffix.
func (v Variable) HasLevel() bool {
	return v.Level.Unit != ""
}

// String renders the suffixed form, e.g. "air_temperature_at_850_hPa".
func (v Variable) String() string {
	if !v.HasLevel() {
		return v.Name
	}
	return v.Name + levelSeparator + v.Level.Value + "_" + string(v.Level.Unit)
}

// ParseVariable splits a suffixed CF name into its base name and level.
// The suffix after the first "_at_" must be "<value>_<unit>".
func ParseVariable(s string) (Variable, error) {
	base, suffix, found := strings.Cut(s, levelSeparator)
	if base == "" {
		return Variable{}, newError(KindMalformedName, s, "empty variable name")
	}
	if !found {
		return Variable{Name: base}, nil
	}
	parts := strings.Split(suffix, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Variable{}, newError(KindMalformedName, s, "level suffix must be <value>_<unit>")
	}
	return Variable{Name: base, Level: Level{Value: parts[0], Unit: Unit(parts[1])}}, nil
}

// ParseVariables parses every name, stopping at the first error.
func ParseVariables(names []string) ([]Variable, error) {
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		v, err := ParseVariable(name)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// AddLevels qualifies every name with every level, name-major:
// AddLevels([t, z], [500, 850], hPa) = [t@500, t@850, z@500, z@850].
func AddLevels(names []string, levels []int, unit Unit) []Variable {
	vars := make([]Variable, 0, len(names)*len(levels))
	for _, name := range names {
		for _, lvl := range levels {
			vars = append(vars, AtLevel(name, lvl, unit))
		}
	}
	return vars
}

// Names renders each variable with String.
func Names(vars []Variable) []string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.String()
	}
	return names
}
