package mera

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultInferenceID tags forecasts written by the downstream model.
	DefaultInferenceID = "aifc"
	// DefaultMember is the ensemble member directory of deterministic runs.
	DefaultMember = "mbr000"

	forecastStampLayout = "2006010215"
	forecastExtension   = ".grib"
)

// ForecastPath returns where a model forecast for one base and lead time is
// stored: <root>/<id>/YYYY/MM/DD/HH/mbr000/<id>YYYYMMDDHH+LLL.grib.
func ForecastPath(root, id string, base time.Time, lead time.Duration) string {
	base = base.UTC()
	name := fmt.Sprintf("%s%s+%03d%s", id, base.Format(forecastStampLayout), int(lead/time.Hour), forecastExtension)
	return filepath.Join(root, id,
		fmt.Sprintf("%04d", base.Year()),
		fmt.Sprintf("%02d", int(base.Month())),
		fmt.Sprintf("%02d", base.Day()),
		fmt.Sprintf("%02d", base.Hour()),
		DefaultMember, name)
}

// ForecastPaths expands every base time over every lead time, base-major.
func ForecastPaths(root, id string, bases []time.Time, leads []time.Duration) []string {
	paths := make([]string, 0, len(bases)*len(leads))
	for _, b := range bases {
		for _, l := range leads {
			paths = append(paths, ForecastPath(root, id, b, l))
		}
	}
	return paths
}

// ParseForecastName extracts validity, base and lead time from a forecast
// file name or path. The ten digits before the '+' are the base time and the
// three after it the lead in hours.
func ParseForecastName(name string) (valid, base time.Time, lead time.Duration, err error) {
	name = path.Base(filepath.ToSlash(name))
	p := strings.IndexByte(name, '+')
	if p < 0 {
		return time.Time{}, time.Time{}, 0, newError(KindMalformedName, name, "no '+' separating base and lead time")
	}
	if p < len(forecastStampLayout) || len(name) < p+4 {
		return time.Time{}, time.Time{}, 0, newError(KindMalformedName, name, "truncated time stamp")
	}

	base, perr := time.ParseInLocation(forecastStampLayout, name[p-len(forecastStampLayout):p], time.UTC)
	if perr != nil {
		return time.Time{}, time.Time{}, 0, newError(KindMalformedName, name, "base time: %v", perr)
	}
	hours, perr := strconv.Atoi(name[p+1 : p+4])
	if perr != nil {
		return time.Time{}, time.Time{}, 0, newError(KindMalformedName, name, "lead time: %v", perr)
	}
	lead = time.Duration(hours) * time.Hour
	return base.Add(lead), base, lead, nil
}

// AnalysisTimes returns the validity times a forecast initialised at base
// needs: one step of history then every step up to maxLead inclusive.
func AnalysisTimes(base time.Time, maxLead, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, errors.New("analysis step must be positive")
	}
	n := int(maxLead / step)
	times := make([]time.Time, 0, n+2)
	for i := -1; i <= n; i++ {
		times = append(times, base.Add(time.Duration(i)*step))
	}
	return times, nil
}
