package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `#!HOSTNAME=localhost
#!MERAROOT=%s
MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS
MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS.bz2
MERA_PRODYEAR_2017_01_61_105_0_4_FC3hr
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"meractl"}, args...))
	return out.String(), err
}

func TestParseTimes(t *testing.T) {
	times, err := parseTimes("2017-01-01", "2017-01-02", "6h")
	require.NoError(t, err)
	assert.Len(t, times, 4)
	assert.Equal(t, time.Date(2017, 1, 1, 18, 0, 0, 0, time.UTC), times[3])

	times, err = parseTimes("2017-01-01 12", "", "3h")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2017, 1, 1, 12, 0, 0, 0, time.UTC)}, times)

	_, err = parseTimes("01/01/2017", "", "3h")
	assert.Error(t, err)
	_, err = parseTimes("2017-01-01", "", "3y")
	assert.Error(t, err)
}

func TestMonthStarts(t *testing.T) {
	times, err := parseTimes("2017-01-30", "2017-02-02", "1d")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC),
	}, monthStarts(times))
}

func TestResolveCommand(t *testing.T) {
	out, err := run(t, "resolve", "--start", "2017-01-01", "precipitation_amount", "air_temperature_at_850_hPa")
	require.NoError(t, err)
	assert.Contains(t, out, "mera/61/105/0/4/MERA_PRODYEAR_2016_12_61_105_0_4_FC3hr")
	assert.Contains(t, out, "mera/11/100/850/0/MERA_PRODYEAR_2017_01_11_100_850_0_ANALYSIS")
}

func TestResolveCommand_Files(t *testing.T) {
	out, err := run(t, "resolve", "--start", "2017-01-31", "--stop", "2017-02-02", "--step", "1d",
		"--files", "--stream", "ANALYSIS,FC3hr", "air_temperature")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS",
		"MERA_PRODYEAR_2017_01_11_105_2_0_FC3hr",
		"MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS",
		"MERA_PRODYEAR_2017_02_11_105_2_0_FC3hr",
	}, strings.Fields(out))
}

func TestResolveCommand_CodesOnly(t *testing.T) {
	out, err := run(t, "resolve", "air_pressure_at_sea_level")
	require.NoError(t, err)
	assert.Contains(t, out, "air_pressure_at_sea_level")
}

func TestResolveCommand_UnknownVariable(t *testing.T) {
	_, err := run(t, "resolve", "sea_ice_thickness")
	assert.ErrorContains(t, err, "sea_ice_thickness")

	_, err = run(t, "resolve")
	assert.ErrorContains(t, err, "no variables")
}

func TestVarsetCommand(t *testing.T) {
	out, err := run(t, "varset", "--preset", "mydata")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "variables:"))

	_, err = run(t, "varset", "--preset", "nope")
	assert.ErrorContains(t, err, "unknown preset")

	path := filepath.Join(t.TempDir(), "vars.yaml")
	_, err = run(t, "varset", "--check", "--out", path, "air_temperature_at_2_metres")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "air_temperature_at_2_metres: {}")

	out, err = run(t, "resolve", "--varset", path)
	require.NoError(t, err)
	assert.Contains(t, out, "air_temperature_at_2_metres")
}

func TestForecastPathCommand(t *testing.T) {
	out, err := run(t, "forecast-path", "--root", "/out", "--base", "2017-01-01", "--max-lead", "6h")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/out/aifc/2017/01/01/00/mbr000/aifc2017010100+003.grib",
		"/out/aifc/2017/01/01/00/mbr000/aifc2017010100+006.grib",
	}, strings.Fields(out))

	out, err = run(t, "forecast-path", "--base", "2017-01-01", "--max-lead", "6h", "--analysis")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func writeArchive(t *testing.T) (manifestDir, root string) {
	t.Helper()
	root = t.TempDir()
	manifestDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(manifestDir, "merafiles_scratch.txt"),
		[]byte(strings.Replace(testManifest, "%s", root, 1)), 0o644))

	dir := filepath.Join(root, "mera", "11", "105", "2", "0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS"), []byte("GRIB"), 0o644))

	compressed, err := os.ReadFile(filepath.Join("..", "..", "internal", "transfer", "testdata", "MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS.bz2"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS.bz2"), compressed, 0o644))
	return manifestDir, root
}

func TestWhereCommand(t *testing.T) {
	dir, _ := writeArchive(t)
	out, err := run(t, "--manifest-dir", dir, "where", "--medium", "scratch", "--months",
		"air_temperature", "precipitation_amount", "wind_speed")
	require.NoError(t, err)
	assert.Contains(t, out, "3 files")
	assert.Regexp(t, `air_temperature\s+11_105_2_0\s+2`, out)
	assert.Regexp(t, `wind_speed\s+\S+\s+0`, out)
	assert.Contains(t, out, "2017 |")
	assert.Contains(t, out, "1 of 3 variables are missing\n  wind_speed\n")
}

func TestCopyCommand(t *testing.T) {
	dir, _ := writeArchive(t)
	dest := t.TempDir()

	out, err := run(t, "--manifest-dir", dir, "copy", "--medium", "scratch", "--dest", dest, "--dry-run", "air_temperature")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "->"), "compressed copies are included by default")

	out, err = run(t, "--manifest-dir", dir, "copy", "--medium", "scratch", "--dest", dest, "air_temperature")
	require.NoError(t, err)
	assert.Contains(t, out, "copied 2 of 2 files")

	leaf := filepath.Join(dest, "mera", "11", "105", "2", "0")
	data, err := os.ReadFile(filepath.Join(leaf, "MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS"))
	require.NoError(t, err)
	assert.Equal(t, "GRIB", string(data))

	data, err = os.ReadFile(filepath.Join(leaf, "MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS"))
	require.NoError(t, err, "compressed copies are expanded")
	assert.True(t, strings.HasPrefix(string(data), "GRIB fake payload"))
	assert.NoFileExists(t, filepath.Join(leaf, "MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS.bz2"))
}

func TestCopyCommand_ExcludeCompressed(t *testing.T) {
	dir, _ := writeArchive(t)
	out, err := run(t, "--manifest-dir", dir, "copy", "--medium", "scratch", "--dest", t.TempDir(),
		"--dry-run", "--exclude-compressed", "air_temperature")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "->"))
	assert.NotContains(t, out, ".bz2")
}

func TestCopyCommand_KeepCompressed(t *testing.T) {
	dir, _ := writeArchive(t)
	dest := t.TempDir()
	_, err := run(t, "--manifest-dir", dir, "copy", "--medium", "scratch", "--dest", dest,
		"--keep-compressed", "air_temperature")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "mera", "11", "105", "2", "0", "MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS.bz2"))
}

func TestCopyCommand_ReportsFailures(t *testing.T) {
	dir, root := writeArchive(t)
	require.NoError(t, os.Remove(filepath.Join(root, "mera", "11", "105", "2", "0", "MERA_PRODYEAR_2017_02_11_105_2_0_ANALYSIS.bz2")))

	_, err := run(t, "--manifest-dir", dir, "copy", "--medium", "scratch", "--dest", t.TempDir(), "air_temperature")
	assert.ErrorContains(t, err, "1 transfers failed")
}
