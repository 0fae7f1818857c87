package mera

import "strconv"

// unitLevelTypes maps numeric level units to their GRIB1 level type.
var unitLevelTypes = map[Unit]int{
	UnitHectopascal: LevelTypePressure,
	UnitMetres:      LevelTypeAboveGround,
	UnitKelvin:      LevelTypeIsotherm,
}

// Resolve returns the code of v: the table default for its base name, with
// level type and level overridden when v carries a suffix.
func (t Table) Resolve(v Variable) (Code, error) {
	code, ok := t.Lookup(v.Name)
	if !ok {
		return Code{}, newError(KindUnknownVariable, v.Name, "not in the standard name table")
	}
	if !v.HasLevel() {
		return code, nil
	}

	if levelType, ok := unitLevelTypes[v.Level.Unit]; ok {
		lvl, err := strconv.Atoi(v.Level.Value)
		if err != nil {
			return Code{}, newError(KindMalformedName, v.String(), "level %q is not an integer", v.Level.Value)
		}
		code.LevelType = levelType
		code.Level = lvl
		return code, nil
	}

	if v.Level.Unit == UnitLevel {
		code.LevelType = LevelTypeAboveGround
		if v.Level.Value == "sea" {
			code.LevelType = LevelTypeAboveSea
		}
		code.Level = 0
		return code, nil
	}

	return Code{}, newError(KindUnsupportedUnit, string(v.Level.Unit), "in %q", v.String())
}

// ResolveName parses and resolves a suffixed CF name in one step.
func (t Table) ResolveName(name string) (Code, error) {
	v, err := ParseVariable(name)
	if err != nil {
		return Code{}, err
	}
	return t.Resolve(v)
}
